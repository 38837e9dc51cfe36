// Package rules lets an application attach observers to resolved nodes by
// file name pattern.
package rules

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"

	"reflow/internal/graph"
)

// Observer transforms a resolved node. Returning no node keeps the original
// one; returning several replaces it by all of them, in order.
type Observer func(ctx context.Context, n *graph.Node) ([]*graph.Node, error)

type rule struct {
	pattern   string
	observers []Observer
}

// Registry maps file name patterns to observers. Patterns are globs such as
// "*.v" or "*_ana.xlsx"; a pattern without '/' matches the base name of a
// node, otherwise its full name.
//
// A Registry is populated once at startup and then only read.
type Registry struct {
	rules []*rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds obs for every pattern of a "|" separated list, for
// instance "*.sv|*.sva|*.svh". A malformed pattern never matches.
func (r *Registry) Register(patterns string, obs Observer) error {
	if obs == nil {
		return fmt.Errorf("nil observer for %q", patterns)
	}
	for _, p := range strings.Split(patterns, "|") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ru := r.ruleFor(p)
		ru.observers = append(ru.observers, obs)
	}
	return nil
}

func (r *Registry) ruleFor(pattern string) *rule {
	for _, ru := range r.rules {
		if ru.pattern == pattern {
			return ru
		}
	}
	ru := &rule{pattern: pattern}
	r.rules = append(r.rules, ru)
	return ru
}

// Observers lists the observers applying to name in registration order.
func (r *Registry) Observers(name string) []Observer {
	if r == nil {
		return nil
	}
	var out []Observer
	for _, ru := range r.rules {
		if match(ru.pattern, name) {
			out = append(out, ru.observers...)
		}
	}
	return out
}

func match(pattern, name string) bool {
	name = filepath.ToSlash(name)
	if !strings.Contains(pattern, "/") {
		name = name[strings.LastIndex(name, "/")+1:]
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// Apply runs the observers of every node and returns the transformed
// sequence. Nodes without observers, or whose observers return nothing,
// pass through unchanged.
func (r *Registry) Apply(ctx context.Context, nodes []*graph.Node) ([]*graph.Node, error) {
	out := make([]*graph.Node, 0, len(nodes))
	for _, n := range nodes {
		var replaced []*graph.Node
		for _, obs := range r.Observers(n.Name) {
			res, err := obs(ctx, n)
			if err != nil {
				return nil, fmt.Errorf("rule observer failed on %s: %w", n.Name, err)
			}
			for _, m := range res {
				if m != nil {
					replaced = append(replaced, m)
				}
			}
		}
		if len(replaced) == 0 {
			out = append(out, n)
			continue
		}
		out = append(out, replaced...)
	}
	return out, nil
}
