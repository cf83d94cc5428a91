// Command demo walks through the vrmaction MCP tools over an in-memory
// client session.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vrmaction/pkg/engine"
	"github.com/rhuss/vrmaction/pkg/storage/memory"
	"github.com/rhuss/vrmaction/pkg/transport/mcpserver"
)

func main() {
	ctx := context.Background()
	fmt.Println("=== vrmaction MCP demo ===")
	fmt.Println()

	// 1. Start the server on in-memory transports
	eng := engine.New(memory.New(100), engine.Config{})
	server := mcpserver.New(eng, mcpserver.Options{Version: "demo"})
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		log.Fatalf("server connect: %v", err)
	}
	defer ss.Wait()

	client := mcp.NewClient(&mcp.Implementation{Name: "demo-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		log.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	// 2. Discover tools
	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		log.Fatalf("list tools: %v", err)
	}
	fmt.Println("[1] Tools:")
	for _, t := range tools.Tools {
		fmt.Printf("    %-24s %s\n", t.Name, t.Description)
	}

	// 3. Describe a model that has no finger bones and few expressions
	caps := map[string]any{
		"expressions": []string{"happy", "neutral", "blink"},
		"bones":       []string{"hips", "spine", "head", "rightUpperArm", "rightLowerArm", "leftUpperArm"},
	}
	show(ctx, cs, "[2] Model capabilities", "get_model_capabilities", caps)

	// 4. Generate a template action and a keyword fallback
	show(ctx, cs, "[3] Template action", "generate_vrm_action", map[string]any{
		"action_type":        "wave_hello",
		"intensity":          0.8,
		"model_capabilities": caps,
	})
	show(ctx, cs, "[4] Fallback action", "generate_vrm_action", map[string]any{
		"action_type":        "silly_dance_move",
		"model_capabilities": caps,
	})

	// 5. Sequence
	show(ctx, cs, "[5] Sequence", "get_action_sequence", map[string]any{
		"action_names":       []string{"bow", "clap", "thinking"},
		"model_capabilities": caps,
	})

	// 6. Custom action passthrough
	show(ctx, cs, "[6] Custom action", "create_custom_action", map[string]any{
		"name":            "shrug",
		"expressions":     []map[string]any{{"name": "neutral", "value": 0.5}},
		"bone_transforms": []map[string]any{{"bone_name": "rightUpperArm", "rotation": []float64{0, 0, 0.4}}},
		"duration":        1.5,
	})

	// 7. Errors come back as tool results
	show(ctx, cs, "[7] Invalid intensity", "generate_vrm_action", map[string]any{
		"action_type": "wave_hello",
		"intensity":   1.5,
	})

	// 8. Action history
	show(ctx, cs, "[8] History", "list_actions", map[string]any{"limit": 3, "order": "asc"})

	fmt.Println("\n=== demo complete ===")
}

func show(ctx context.Context, cs *mcp.ClientSession, title, tool string, args any) {
	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		log.Fatalf("%s: %v", tool, err)
	}

	fmt.Printf("\n%s (%s):\n", title, tool)
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*mcp.TextContent); ok {
				fmt.Printf("    error: %s\n", tc.Text)
			}
		}
		return
	}
	data, _ := json.MarshalIndent(res.StructuredContent, "    ", "  ")
	fmt.Printf("    %s\n", data)
	if len(res.Meta) > 0 {
		meta, _ := json.Marshal(res.Meta)
		fmt.Printf("    _meta: %s\n", meta)
	}
}
