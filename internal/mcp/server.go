// Package mcp provides an MCP (Model Context Protocol) server for awxmon.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/awxmon/awxmon/internal/api"
)

// Server wraps the MCP server with awxmon-specific functionality.
type Server struct {
	mcpServer *server.MCPServer
	client    *api.Client
	toolNames []string
}

// NewServer creates a new MCP server backed by the given API client.
func NewServer(client *api.Client, version string) *Server {
	s := &Server{client: client}

	s.mcpServer = server.NewMCPServer(
		"awxmon",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.registerTools()

	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// ListToolNames returns the names of all registered tools.
func (s *Server) ListToolNames() []string {
	return append([]string(nil), s.toolNames...)
}

// addTool registers a tool and records its name for ListToolNames.
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.toolNames = append(s.toolNames, tool.Name)
	s.mcpServer.AddTool(tool, handler)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.registerJobsList()
	s.registerJobGet()
	s.registerJobOutput()
	s.registerJobCancel()
	s.registerJobRelaunch()
	s.registerJobDelete()
}

// jsonResult marshals a result to JSON and returns a tool result.
func jsonResult(result any) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// jobInfo flattens a job for tool output.
func jobInfo(job api.Job) map[string]any {
	info := map[string]any{
		"job_id": job.ID,
		"name":   job.Name,
		"status": job.Status,
	}
	if job.Started != nil {
		info["started"] = job.Started
	}
	if job.Finished != nil {
		info["finished"] = job.Finished
	}
	if job.SummaryFields.CreatedBy.Username != "" {
		info["created_by"] = job.SummaryFields.CreatedBy.Username
	}
	if job.SummaryFields.Project.Name != "" {
		info["project"] = job.SummaryFields.Project.Name
	}
	return info
}

// registerJobsList registers the jobs_list tool.
func (s *Server) registerJobsList() {
	tool := mcp.NewTool("jobs_list",
		mcp.WithDescription("List jobs on the automation controller"),
		mcp.WithNumber("page_size",
			mcp.Description("Number of jobs to return (default: 25)"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort field, prefix with '-' for descending (default: -finished)"),
		),
		mcp.WithString("status",
			mcp.Description("Filter by status (e.g. running, successful, failed)"),
		),
	)

	s.addTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := api.ListParams{
			PageSize: request.GetInt("page_size", 25),
			OrderBy:  request.GetString("order_by", "-finished"),
		}
		if status := request.GetString("status", ""); status != "" {
			params.Filters = map[string][]string{"status": {status}}
		}

		page, err := s.client.ListJobs(ctx, params)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list jobs: %v", err)), nil
		}

		jobList := make([]map[string]any, 0, len(page.Results))
		for _, job := range page.Results {
			jobList = append(jobList, jobInfo(job))
		}

		return jsonResult(map[string]any{"count": page.Count, "jobs": jobList})
	})
}

// registerJobGet registers the job_get tool.
func (s *Server) registerJobGet() {
	tool := mcp.NewTool("job_get",
		mcp.WithDescription("Get details of a single job"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("Job ID"),
		),
	)

	s.addTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireInt("job_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		job, err := s.client.Job(ctx, jobID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get job: %v", err)), nil
		}

		info := jobInfo(*job)
		info["url"] = s.client.JobURL(job.ID)
		return jsonResult(info)
	})
}

// registerJobOutput registers the job_output tool.
func (s *Server) registerJobOutput() {
	tool := mcp.NewTool("job_output",
		mcp.WithDescription("Get a page of a job's stdout output"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("Job ID"),
		),
		mcp.WithNumber("page",
			mcp.Description("Event page number, 1-based (default: 1)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Events per page (default: 50)"),
		),
	)

	s.addTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireInt("job_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		page := request.GetInt("page", 1)
		pageSize := request.GetInt("page_size", 50)

		events, err := s.client.JobEvents(ctx, jobID, page, pageSize)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to fetch output: %v", err)), nil
		}

		var output strings.Builder
		for _, ev := range events.Results {
			output.WriteString(ev.Stdout)
		}

		return jsonResult(map[string]any{
			"job_id":       jobID,
			"page":         page,
			"total_events": events.Count,
			"output":       output.String(),
		})
	})
}

// registerJobCancel registers the job_cancel tool.
func (s *Server) registerJobCancel() {
	tool := mcp.NewTool("job_cancel",
		mcp.WithDescription("Request cancellation of a running job"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("Job ID"),
		),
	)

	s.addTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireInt("job_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := s.client.CancelJob(ctx, jobID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to cancel job: %v", err)), nil
		}

		job, err := s.client.Job(ctx, jobID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get job: %v", err)), nil
		}

		return jsonResult(jobInfo(*job))
	})
}

// registerJobRelaunch registers the job_relaunch tool.
func (s *Server) registerJobRelaunch() {
	tool := mcp.NewTool("job_relaunch",
		mcp.WithDescription("Relaunch a job and return the new job"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("Job ID to relaunch"),
		),
	)

	s.addTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireInt("job_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		job, err := s.client.RelaunchJob(ctx, jobID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to relaunch job: %v", err)), nil
		}

		return jsonResult(jobInfo(*job))
	})
}

// registerJobDelete registers the job_delete tool.
func (s *Server) registerJobDelete() {
	tool := mcp.NewTool("job_delete",
		mcp.WithDescription("Delete a job record. Only finished jobs can be deleted."),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("Job ID"),
		),
	)

	s.addTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireInt("job_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := s.client.DeleteJob(ctx, jobID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete job: %v", err)), nil
		}

		return jsonResult(map[string]any{"job_id": jobID, "deleted": true})
	})
}
