package main

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/blueprint-graph/compiler/internal/compiler"
	"github.com/blueprint-graph/compiler/internal/config"
	"github.com/blueprint-graph/compiler/internal/layout"
	"github.com/blueprint-graph/compiler/internal/logger"
	"github.com/blueprint-graph/compiler/internal/registry"
	"github.com/blueprint-graph/compiler/internal/result"
)

// Modes accepted in LambdaEvent.Mode. An empty mode compiles fully.
const (
	ModeCompile  = "compile"
	ModeGraph    = "graph"
	ModeValidate = "validate"
)

// LambdaEvent is the invocation payload (e.g. from API Gateway).
type LambdaEvent struct {
	Body     string `json:"body"` // blueprint YAML (raw or base64 if isBase64)
	IsBase64 bool   `json:"isBase64,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// LambdaResponse is returned to the client (API Gateway).
type LambdaResponse struct {
	StatusCode  int                   `json:"statusCode"`
	Success     bool                  `json:"success"`
	Graph       *compiler.GraphResult `json:"graph,omitempty"`
	Diagnostics []result.Diagnostic   `json:"diagnostics,omitempty"`
	Order       []string              `json:"order,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// APIGatewayResponse is the shape expected by API Gateway proxy integration (body = JSON string).
type APIGatewayResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

type server struct {
	c   *compiler.Compiler
	log *zap.Logger
}

func newServer(cfg *config.Config, log *zap.Logger) (*server, error) {
	reg := registry.Default
	if cfg.SchemaPath != "" {
		var err error
		if reg, err = loadSchema(cfg.SchemaPath); err != nil {
			return nil, err
		}
	}
	c := compiler.New(compiler.Options{
		Registry: reg,
		Layout: layout.Options{
			NodeWidth:   cfg.NodeWidth,
			NodeHeight:  cfg.NodeHeight,
			NodeSep:     cfg.NodeSep,
			RankSep:     cfg.RankSep,
			TierSpacing: cfg.TierSpacing,
			BaseOffset:  cfg.BaseOffset,
		},
		Logger:      log,
		MaxParallel: cfg.MaxParallel,
	})
	return &server{c: c, log: log}, nil
}

func (s *server) handle(ctx context.Context, event LambdaEvent) (APIGatewayResponse, error) {
	out := LambdaResponse{StatusCode: 200}

	body := event.Body
	if event.IsBase64 {
		dec, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			out.StatusCode = 400
			out.Error = "invalid base64 body: " + err.Error()
			return wrap(out), nil
		}
		body = string(dec)
	}

	switch event.Mode {
	case ModeGraph:
		g := s.c.Graph(body)
		out.Graph = &g
		out.Success = g.Error == ""
		out.Error = g.Error
	case ModeValidate:
		diags, err := s.c.Validate(body)
		if err != nil {
			out.Error = err.Error()
			break
		}
		out.Diagnostics = diags
		out.Success = !result.HasErrors(diags)
	case ModeCompile, "":
		res := s.c.Compile(body)
		out.Graph = &res.Graph
		out.Diagnostics = res.Diagnostics
		out.Order = res.Order
		out.Success = res.Success
		out.Error = res.Error
	default:
		out.StatusCode = 400
		out.Error = "unknown mode: " + event.Mode
		return wrap(out), nil
	}

	if !out.Success {
		out.StatusCode = 422
	}
	s.log.Info("request handled",
		zap.String("mode", event.Mode),
		zap.Int("status", out.StatusCode),
		zap.Int("diagnostics", len(out.Diagnostics)))
	return wrap(out), nil
}

func wrap(out LambdaResponse) APIGatewayResponse {
	body, _ := sonic.MarshalString(out)
	return APIGatewayResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func main() {
	cfg := config.LoadOrDefault()
	log, err := logger.New(logger.Config{Level: cfg.Level, Development: cfg.Development})
	if err != nil {
		log = logger.NewDefault()
	}
	defer log.Sync()

	s, err := newServer(cfg, log)
	if err != nil {
		log.Fatal("failed to start", zap.Error(err))
	}
	lambda.Start(s.handle)
}
