// Package mcp implements a minimal Model Context Protocol server over
// stdio. Requests are newline-delimited JSON-RPC 2.0 messages read from
// stdin; responses are written to stdout. Nothing else may be written to
// stdout while the server runs, logs go to the component log file.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/sushgandhi/browser-use-mcp/pkg/logging"
)

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// maxMessageSize bounds a single request line. Page-sized tool arguments
// fit comfortably, anything larger is a protocol violation.
const maxMessageSize = 4 * 1024 * 1024

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content []contentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// Server dispatches MCP requests to registered tools.
type Server struct {
	name    string
	version string

	in  io.Reader
	out io.Writer

	writeMu sync.Mutex

	tools map[string]Tool
	order []string

	log *logging.Logger
}

// NewServer creates a server reading requests from in and writing
// responses to out.
func NewServer(name, version string, in io.Reader, out io.Writer) *Server {
	log, _ := logging.NewLogger("mcp")
	return &Server{
		name:    name,
		version: version,
		in:      in,
		out:     out,
		tools:   make(map[string]Tool),
		log:     log,
	}
}

// Register adds a tool to the server. Registration order is preserved in
// tools/list. Must be called before Serve.
func (s *Server) Register(tool Tool) {
	if _, exists := s.tools[tool.Name()]; !exists {
		s.order = append(s.order, tool.Name())
	}
	s.tools[tool.Name()] = tool
}

// Serve processes requests until EOF on the input stream or ctx is
// canceled.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Infof("serving %s %s with %d tools", s.name, s.version, len(s.tools))

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warnf("unparseable request: %v", err)
			s.write(&response{
				JSONRPC: "2.0",
				ID:      json.RawMessage("null"),
				Error:   &rpcError{Code: codeParseError, Message: "parse error"},
			})
			continue
		}

		if resp := s.handle(ctx, &req); resp != nil {
			s.write(resp)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request stream: %w", err)
	}
	s.log.Infof("request stream closed, shutting down")
	return nil
}

// handle dispatches one request. Notifications return nil, no response
// is sent for them.
func (s *Server) handle(ctx context.Context, req *request) *response {
	s.log.Debugf("request: %s", req.Method)

	switch req.Method {
	case "initialize":
		return s.result(req, map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    s.name,
				"version": s.version,
			},
		})
	case "notifications/initialized", "notifications/cancelled":
		return nil
	case "ping":
		return s.result(req, map[string]interface{}{})
	case "tools/list":
		descriptors := make([]toolDescriptor, 0, len(s.order))
		for _, name := range s.order {
			tool := s.tools[name]
			descriptors = append(descriptors, toolDescriptor{
				Name:        tool.Name(),
				Description: tool.Description(),
				InputSchema: tool.Schema(),
			})
		}
		return s.result(req, map[string]interface{}{"tools": descriptors})
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		if req.ID == nil {
			return nil
		}
		return s.fail(req, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) callTool(ctx context.Context, req *request) *response {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.fail(req, codeInvalidParams, "invalid tools/call params")
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return s.fail(req, codeInvalidParams, fmt.Sprintf("unknown tool: %s", params.Name))
	}

	s.log.Infof("calling tool %s", params.Name)
	result, err := tool.Execute(ctx, params.Arguments)
	if err != nil {
		s.log.Errorf("tool %s failed: %v", params.Name, err)
		return s.result(req, &callResult{
			Content: []contentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
	}

	text, ok := result.(string)
	if !ok {
		serialized, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return s.fail(req, codeInternalError, fmt.Sprintf("failed to serialize tool result: %v", err))
		}
		text = string(serialized)
	}
	return s.result(req, &callResult{
		Content: []contentBlock{{Type: "text", Text: text}},
	})
}

func (s *Server) result(req *request, result interface{}) *response {
	if req.ID == nil {
		return nil
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) fail(req *request, code int, message string) *response {
	if req.ID == nil {
		return nil
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: code, Message: message}}
}

func (s *Server) write(resp *response) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	payload, err := json.Marshal(resp)
	if err != nil {
		s.log.Errorf("failed to marshal response: %v", err)
		return
	}
	payload = append(payload, '\n')
	if _, err := s.out.Write(payload); err != nil {
		s.log.Errorf("failed to write response: %v", err)
	}
}
