// Command render_responses loads a YAML file of response records,
// renders each into ranked deduplicated groups, and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JingYue2000/ChainForge/infrastructure/render"
	"github.com/JingYue2000/ChainForge/internal/application"
	"github.com/JingYue2000/ChainForge/internal/domain"
)

type responseFile struct {
	Responses []*domain.Response `yaml:"responses"`
}

func main() {
	var (
		configPath  = flag.String("config", "", "Inspector config YAML (optional)")
		inputPath   = flag.String("input", "responses.yaml", "Responses YAML file")
		parallelism = flag.Int("parallelism", 4, "Maximum concurrent renders")
	)
	flag.Parse()

	inspector, err := loadInspector(*configPath)
	if err != nil {
		log.Fatalf("Failed to build inspector: %v", err)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	var file responseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Fatalf("Failed to parse input: %v", err)
	}

	results, err := inspector.RenderAll(context.Background(), file.Responses, *parallelism)
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	for i, units := range results {
		fmt.Printf("=== response %s: %d group(s)\n", file.Responses[i].UID, len(units))
		for _, unit := range units {
			printUnit(unit)
		}
	}
}

func loadInspector(configPath string) (*application.Inspector, error) {
	if configPath == "" {
		return application.NewInspector("inspector", render.DefaultConfig())
	}
	return application.NewInspectorLoader().LoadFromFile(configPath)
}

func printUnit(unit render.Unit) {
	switch {
	case unit.Kind == domain.KindImage:
		fmt.Printf("  [image, %d bytes]", len(unit.ImageData))
	default:
		fmt.Printf("  %q", unit.Display)
	}
	if unit.Repeats > 0 {
		fmt.Printf(" x%d", unit.Repeats)
	}
	fmt.Printf(" indices=%v\n", unit.Indices)

	if unit.Score != nil {
		for _, line := range unit.Score.Lines {
			fmt.Printf("    %s [%s]\n", line.Text, line.Class)
		}
	}
	if unit.Label != "" {
		fmt.Printf("  -- %s\n", unit.Label)
	}
}
