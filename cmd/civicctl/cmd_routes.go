package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"civicfund/internal/site/routes"
)

var routesYAML bool

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the site route map grouped by section",
	Args:  cobra.NoArgs,
	RunE:  runRoutes,
}

func init() {
	routesCmd.Flags().BoolVar(&routesYAML, "yaml", false, "print as YAML")
}

type routeEntry struct {
	Name  string `yaml:"name"`
	Path  string `yaml:"path"`
	Title string `yaml:"title"`
	Role  string `yaml:"role,omitempty"`
}

type sectionEntry struct {
	Section string       `yaml:"section"`
	Routes  []routeEntry `yaml:"routes"`
}

func routeMap() []sectionEntry {
	grouped := routes.Grouped()
	out := make([]sectionEntry, 0, len(routes.Sections))
	for _, section := range routes.Sections {
		entry := sectionEntry{Section: string(section)}
		for _, r := range grouped[section] {
			entry.Routes = append(entry.Routes, routeEntry{
				Name:  r.Name,
				Path:  r.Path,
				Title: r.Title,
				Role:  string(r.Role),
			})
		}
		out = append(out, entry)
	}
	return out
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	sections := routeMap()
	if routesYAML {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(sections); err != nil {
			return fmt.Errorf("encode routes: %w", err)
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, s := range sections {
		fmt.Fprintf(tw, "[%s]\n", s.Section)
		for _, r := range s.Routes {
			role := r.Role
			if role == "" {
				role = "public"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.Path, r.Name, role, r.Title)
		}
	}
	return tw.Flush()
}
