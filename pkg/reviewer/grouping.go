package reviewer

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Group is one partition of the input file list. Name is the grouping key
// (a directory path or a file extension); Language is set for fileType
// groups when the extension maps to a known language.
type Group struct {
	Name     string   `json:"name"`
	Language string   `json:"language,omitempty"`
	Files    []string `json:"files"`
}

// TreeNode is a display-only mirror of the grouped directory structure.
// The root node is named "."; children are keyed by path component and kept
// in first-seen order.
type TreeNode struct {
	Name     string      `json:"name"`
	Files    []string    `json:"files,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// GroupingOptions configures grouped processing on top of the sequential
// engine options.
type GroupingOptions struct {
	GroupBy GroupBy

	// ExcludeDirectories drops files beneath a matching directory on any
	// grouping axis; the directory's files contribute to no group and its
	// name is recorded in ExcludedDirectories. Matching is by exact path
	// or path prefix.
	ExcludeDirectories []string

	// IncludeOnlyDirectories, when non-empty, keeps only files beneath
	// matching directories.
	IncludeOnlyDirectories []string

	// ShowDirectoryTree additionally builds the display tree.
	ShowDirectoryTree bool
}

// GroupedRun is the outcome of grouped processing. Results concatenates the
// per-group result lists in group order; group boundaries are recoverable
// only through Groups.
type GroupedRun struct {
	ProcessingMode      string    `json:"processingMode"`
	Groups              []Group   `json:"groups"`
	Results             []Result  `json:"results"`
	Tree                *TreeNode `json:"directoryTree,omitempty"`
	ExcludedDirectories []string  `json:"excludedDirectories"`
}

// ProcessFilesGrouped partitions files by directory or file type, then runs
// the sequential engine over each surviving group in first-seen key order.
// Input files are deduplicated first: a file reached through overlapping
// glob expansions is processed exactly once.
func (p *SequentialProcessor) ProcessFilesGrouped(ctx context.Context, files []string, proc FileProcessor, gopts GroupingOptions) *GroupedRun {
	if gopts.GroupBy == "" {
		gopts.GroupBy = DefaultGroupBy
	}

	unique := dedupe(files)
	groups, excluded := buildGroups(unique, gopts)

	run := &GroupedRun{
		ProcessingMode:      "grouped",
		Groups:              groups,
		Results:             []Result{},
		ExcludedDirectories: excluded,
	}
	if gopts.ShowDirectoryTree {
		run.Tree = buildTree(groups)
	}

	p.logger.Debug("Grouped run prepared",
		slog.String("groupBy", string(gopts.GroupBy)),
		slog.Int("groups", len(groups)),
		slog.Int("excludedDirs", len(excluded)))

	for _, g := range groups {
		if ctx.Err() != nil {
			break
		}
		run.Results = append(run.Results, p.ProcessFiles(ctx, g.Files, proc)...)
	}
	return run
}

// dedupe removes repeated paths while preserving first-seen order.
func dedupe(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// buildGroups partitions files into one Group per distinct key, preserving
// first-seen key order and original file order within a group.
func buildGroups(files []string, gopts GroupingOptions) ([]Group, []string) {
	index := make(map[string]int)
	groups := make([]Group, 0)
	excludedSet := make(map[string]struct{})
	excluded := make([]string, 0)

	for _, f := range files {
		// Directory filters apply on every grouping axis: an excluded
		// directory contributes zero files to any group.
		dir := filepath.ToSlash(filepath.Dir(f))
		if matchesDirectory(dir, gopts.ExcludeDirectories) {
			if _, ok := excludedSet[dir]; !ok {
				excludedSet[dir] = struct{}{}
				excluded = append(excluded, dir)
			}
			continue
		}
		if len(gopts.IncludeOnlyDirectories) > 0 && !matchesDirectory(dir, gopts.IncludeOnlyDirectories) {
			continue
		}

		key := groupKey(f, gopts.GroupBy)
		i, ok := index[key]
		if !ok {
			g := Group{Name: key}
			if gopts.GroupBy == GroupByFileType {
				if lang, _ := enry.GetLanguageByExtension(f); lang != "" {
					g.Language = lang
				}
			}
			index[key] = len(groups)
			groups = append(groups, g)
			i = index[key]
		}
		groups[i].Files = append(groups[i].Files, f)
	}
	return groups, excluded
}

// groupKey returns the partition key for one file.
func groupKey(file string, by GroupBy) string {
	if by == GroupByFileType {
		ext := filepath.Ext(file)
		if ext == "" {
			return "(no extension)"
		}
		return ext
	}
	dir := filepath.ToSlash(filepath.Dir(file))
	return dir
}

// matchesDirectory reports whether dir equals any rule or sits beneath one.
func matchesDirectory(dir string, rules []string) bool {
	for _, rule := range rules {
		rule = filepath.ToSlash(filepath.Clean(rule))
		if dir == rule || strings.HasPrefix(dir+"/", rule+"/") {
			return true
		}
	}
	return false
}

// buildTree mirrors the grouped files into a path-segment tree. Files land
// on the node for their containing directory, so every file in the flat
// groups appears exactly once in the tree and vice versa.
func buildTree(groups []Group) *TreeNode {
	root := &TreeNode{Name: "."}
	for _, g := range groups {
		for _, f := range g.Files {
			dir := filepath.ToSlash(filepath.Dir(f))
			node := root
			if dir != "." {
				for _, seg := range strings.Split(dir, "/") {
					if seg == "" || seg == "." {
						continue
					}
					node = node.child(seg)
				}
			}
			node.Files = append(node.Files, f)
		}
	}
	return root
}

// child finds or appends the named child, keeping first-seen order.
func (n *TreeNode) child(name string) *TreeNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &TreeNode{Name: name}
	n.Children = append(n.Children, c)
	return c
}
