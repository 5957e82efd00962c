// Package mcp serves the evaluation toolset over the Model Context Protocol,
// so any MCP-capable agent host can call the evaluation and refinement tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
	"deep-agent/pkg/logger"
	"deep-agent/pkg/metrics"
	"deep-agent/pkg/overrides"
	"deep-agent/pkg/tools"
)

// MCPCmd represents the MCP server command
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the evaluation MCP server with stdio transport",
	Long: `Start an MCP server exposing the evaluation and refinement tools over stdio.

This server provides:
- Agent performance evaluation and refinement trigger tools
- System prompt refinement and override management tools
- System health monitoring and trend analysis tools

Examples:
  deep-agent mcp                       # Start MCP server on stdio
  deep-agent mcp --db ./agents.db      # Use a custom database path`,
	RunE: runMCPServer,
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	// Stdout carries the MCP protocol; logs must stay off it.
	log, err := logger.CreateLogger(viper.GetString("log-file"), viper.GetString("log-level"), viper.GetString("log-format"), false)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()

	db, err := database.NewSQLiteDB(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	toolset, err := buildToolset(db, log)
	if err != nil {
		return err
	}

	s := server.NewMCPServer(
		"Agent Evaluation Server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	if err := registerTools(s, toolset); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Starting evaluation MCP server with stdio transport...\n")
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// buildToolset wires the evaluation core onto the database
func buildToolset(db database.Database, log logger.Logger) (*tools.Toolset, error) {
	overrideService, err := overrides.NewService(db, log)
	if err != nil {
		return nil, err
	}

	source, err := metrics.NewSQLiteSource(db)
	if err != nil {
		return nil, err
	}

	evaluator, err := evaluation.NewEvaluator(source, evaluation.DefaultEvaluatorConfig(), log)
	if err != nil {
		return nil, err
	}

	trigger, err := evaluation.NewTrigger(evaluator, db, log)
	if err != nil {
		return nil, err
	}

	return tools.NewToolset(evaluator, trigger, nil, overrideService, db, log)
}

// registerTools adds every toolset tool to the MCP server, reusing the
// toolset's own parameter schemas.
func registerTools(s *server.MCPServer, toolset *tools.Toolset) error {
	for _, tool := range toolset.Tools() {
		name := tool.Function.Name
		description := tool.Function.Description

		schema, err := json.Marshal(tool.Function.Parameters)
		if err != nil {
			return fmt.Errorf("failed to marshal schema for %s: %w", name, err)
		}

		s.AddTool(
			mcp.NewToolWithRawSchema(name, description, schema),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				result, err := toolset.Call(ctx, name, req.GetArguments())
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return mcp.NewToolResultText(result), nil
			},
		)
	}
	return nil
}
