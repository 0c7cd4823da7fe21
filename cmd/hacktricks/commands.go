package main

import (
	"fmt"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/lookup"
	"github.com/hacktricks-mcp/mcp-server/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newSearchCmd(o *rootOptions) *cobra.Command {
	var input tools.SearchInput

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the corpus, grouped by page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Query = strings.Join(args, " ")
			return run(cmd, o, func(s *tools.Services) mcp.ToolHandlerFor[tools.SearchInput, tools.SearchOutput] {
				return s.Search
			}, input)
		},
	}
	cmd.Flags().StringVarP(&input.Category, "category", "c", "", "Restrict the search to one top-level category")
	cmd.Flags().IntVarP(&input.Limit, "limit", "n", 0, "Maximum number of pages")
	return cmd
}

func newPageCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "page <path>",
		Short: "Print a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, func(s *tools.Services) mcp.ToolHandlerFor[tools.PageInput, tools.PageOutput] {
				return s.Page
			}, tools.PageInput{Path: args[0]})
		},
	}
}

func newOutlineCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <path>",
		Short: "Print the header tree of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, func(s *tools.Services) mcp.ToolHandlerFor[tools.PageInput, tools.OutlineOutput] {
				return s.Outline
			}, tools.PageInput{Path: args[0]})
		},
	}
}

func newSectionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "section <path> <header>",
		Short: "Print one section of a page",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := tools.SectionInput{Path: args[0], Section: strings.Join(args[1:], " ")}
			return run(cmd, o, func(s *tools.Services) mcp.ToolHandlerFor[tools.SectionInput, tools.SectionOutput] {
				return s.Section
			}, input)
		},
	}
}

func newCheatsheetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cheatsheet <path>",
		Short: "Print every code block of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, func(s *tools.Services) mcp.ToolHandlerFor[tools.PageInput, tools.CheatsheetOutput] {
				return s.Cheatsheet
			}, tools.PageInput{Path: args[0]})
		},
	}
}

func newCategoriesCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories [category]",
		Short: "List categories, or the page tree of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input tools.CategoriesInput
			if len(args) == 1 {
				input.Category = args[0]
			}
			return run(cmd, o, func(s *tools.Services) mcp.ToolHandlerFor[tools.CategoriesInput, tools.CategoriesOutput] {
				return s.Categories
			}, input)
		},
	}
}

func newLookupCmd(o *rootOptions) *cobra.Command {
	var input tools.LookupInput

	cmd := &cobra.Command{
		Use:   "lookup <topic>",
		Short: "Find the best page for a topic with its exploitation sections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Topic = strings.Join(args, " ")
			return run(cmd, o, func(s *tools.Services) mcp.ToolHandlerFor[tools.LookupInput, lookup.Result] {
				return s.QuickLookup
			}, input)
		},
	}
	cmd.Flags().StringVarP(&input.Category, "category", "c", "", "Restrict the lookup to one top-level category")
	return cmd
}

func newDoctorCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that ripgrep and the corpus are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := tools.ServerInfo{Name: "hacktricks", Version: version}
			return run(cmd, o, func(s *tools.Services) mcp.ToolHandlerFor[tools.StatusInput, tools.StatusOutput] {
				return s.Status(info)
			}, tools.StatusInput{})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hacktricks version %s\n", version)
		},
	}
}
