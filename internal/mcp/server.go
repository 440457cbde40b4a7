// Package mcp exposes the outfit service as MCP tools. Every handler runs
// its service calls on the apply context.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"wardrobe/internal/service"
)

// Executor runs a task on the apply context and waits for it.
type Executor interface {
	Do(ctx context.Context, task func() error) error
}

const instructions = "Manage outfits and the characters that wear them. " +
	"Outfit names are case-insensitive. Characters are addressed by id."

type Server struct {
	svc  *service.Service
	exec Executor
	mcp  *sdk.Server
}

func NewServer(svc *service.Service, exec Executor, version string) *Server {
	s := &Server{
		svc:  svc,
		exec: exec,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "wardrobe",
			Version: version,
		}, &sdk.ServerOptions{Instructions: instructions}),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

func (s *Server) do(ctx context.Context, task func(svc *service.Service) error) error {
	return s.exec.Do(ctx, func() error { return task(s.svc) })
}
