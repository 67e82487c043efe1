package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/dispatch"
	"github.com/wippyai/contract-abi/errors"
	"github.com/wippyai/contract-abi/testcontract"
	"github.com/wippyai/contract-abi/vmhost"
)

// session is a loaded contract: its definition and, when an
// implementation is available, a dispatcher serving it.
type session struct {
	def        *abi.Definition
	dispatcher *dispatch.Dispatcher
	metrics    *prometheus.Registry
	runtime    *vmhost.Runtime
	source     string
}

// openSession loads the configured contract. The caller must Close it.
func (a *app) openSession(ctx context.Context) (*session, error) {
	s := &session{metrics: prometheus.NewRegistry()}
	reg := dispatch.NewRegistry()

	switch {
	case a.cfg.ABI == "":
		def, err := testcontract.Definition()
		if err != nil {
			return nil, err
		}
		if err := testcontract.Register(reg); err != nil {
			return nil, err
		}
		s.def = def
		s.source = "test-contract (built-in)"

	case a.cfg.Wasm == "":
		def, err := abi.LoadFile(a.cfg.ABI)
		if err != nil {
			return nil, err
		}
		s.def = def
		s.source = a.cfg.ABI
		// Signatures only: list, encode and decode work without handlers.
		return s, nil

	default:
		def, err := abi.LoadFile(a.cfg.ABI)
		if err != nil {
			return nil, err
		}
		wasm, err := os.ReadFile(a.cfg.Wasm)
		if err != nil {
			return nil, errors.Load("read "+a.cfg.Wasm, err)
		}
		rt, err := vmhost.New(ctx, &vmhost.Config{MemoryLimitPages: a.cfg.VM.MemoryLimitPages})
		if err != nil {
			return nil, err
		}
		contract, err := rt.Load(ctx, wasm)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		if err := contract.Bind(reg, def); err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		s.def = def
		s.runtime = rt
		s.source = a.cfg.Wasm
	}

	d, err := dispatch.NewDispatcher(reg,
		dispatch.WithLogger(a.logger.Named("dispatch")),
		dispatch.WithMetrics(s.metrics),
	)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.dispatcher = d
	a.logger.Debug("contract loaded",
		zap.String("source", s.source),
		zap.Int("endpoints", len(s.def.Endpoints)))
	return s, nil
}

// requireDispatcher fails when the contract has no implementation.
func (s *session) requireDispatcher() (*dispatch.Dispatcher, error) {
	if s.dispatcher == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad,
			"abi "+s.source+" has no implementation; pass --wasm")
	}
	return s.dispatcher, nil
}

func (s *session) endpoint(name string) (*abi.Endpoint, error) {
	ep, ok := s.def.Endpoint(name)
	if !ok {
		return nil, errors.UnknownEndpoint(name)
	}
	return ep, nil
}

func (s *session) Close(ctx context.Context) {
	if s.runtime != nil {
		_ = s.runtime.Close(ctx)
	}
}
