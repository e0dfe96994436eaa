package mcp

import (
	"net/http"

	"policyrag/internal/job"
	"policyrag/pkg/logger_i"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "1.0.0"

var logger *logger_i.Logger

// Server exposes the question answering and registry surface over MCP so
// agent tooling can call it without polling the async HTTP flow.
type Server struct {
	jobs   *job.Service
	server *mcp.Server
}

func NewServer(jobService *job.Service) *Server {
	logger = logger_i.NewLogger("MCP")

	impl := &mcp.Implementation{
		Name:    "policyrag",
		Version: Version,
	}

	s := &Server{
		jobs:   jobService,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()

	return s
}

// Handler is mounted on the main router; the SDK speaks the streamable
// HTTP transport on it.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
