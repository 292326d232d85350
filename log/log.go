// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The randcast-node library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.

// Package log is the node's structured logging layer. It wraps
// go.uber.org/zap but is called the way the rest of the node expects to
// call it: NewModuleLogger(module) followed by variadic key/value pairs,
// e.g. logger.Debug("claimed task", "requestId", id, "group", idx).
// Every module gets its own named *Logger so verbosity and output can be
// tuned per subsystem without touching call sites.
package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Module names the logger registry keys on, one constant per
// subsystem, in the style of log.ConsensusIstanbulBackend.
type Module string

const (
	EventBus     Module = "eventbus"
	Scheduler    Module = "scheduler"
	Cache        Module = "cache"
	BLSCore      Module = "bls"
	DKGCore      Module = "dkg"
	Listener     Module = "listener"
	Subscriber   Module = "subscriber"
	Committer    Module = "committer"
	Management   Module = "management"
	Chain        Module = "chain"
	ChainContext Module = "context"
	CMD          Module = "cmd"
	DAL          Module = "dal"
)

// Config mirrors the [logger] section of the node's TOML configuration.
type Config struct {
	RollingFileSize int  // megabytes, per lumberjack.Logger.MaxSize
	MaxLogs         int  // lumberjack.Logger.MaxBackups
	ContextLogging  bool // attach the diagnostic Fields snapshot to every line
	FilePath        string
	Level           string
}

var (
	mu       sync.Mutex
	core     zapcore.Core
	cfg      = Config{RollingFileSize: 100, MaxLogs: 10, ContextLogging: true, FilePath: "logs/node.log", Level: "info"}
	registry = map[Module]*Logger{}
)

// Init installs the process-wide logging configuration. It must be
// called once during start-up, before any module logger is used in
// anger. Init rebuilds every module logger already in the registry on
// the new core; loggers derived earlier with NewWith or WithFields keep
// the core they were derived from.
func Init(c Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
	core = buildCore(c)
	for _, l := range registry {
		l.z = zap.New(core).Named(string(l.module)).Sugar()
	}
}

func buildCore(c Config) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEnc := zapcore.NewConsoleEncoder(encCfg)
	fileEnc := zapcore.NewJSONEncoder(encCfg)

	consoleWriter := zapcore.AddSync(colorable.NewColorableStdout())

	var cores []zapcore.Core
	level := levelFromString(c.Level)
	cores = append(cores, zapcore.NewCore(consoleEnc, consoleWriter, level))

	if c.FilePath != "" {
		rolling := &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.RollingFileSize,
			MaxBackups: c.MaxLogs,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(rolling), level))
	}
	return zapcore.NewTee(cores...)
}

func levelFromString(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Fields is the diagnostic key/value context carried across task
// boundaries: fn_name, node address, chain id, group summary. A spawned
// task snapshots its parent's Fields and re-installs them into its own
// Logger view before running.
type Fields map[string]interface{}

func (f Fields) flatten() []interface{} {
	out := make([]interface{}, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}

// Logger is a module-scoped, key/value structured logger.
type Logger struct {
	module Module
	z      *zap.SugaredLogger
	fields Fields
}

// NewModuleLogger returns (and memoizes) the Logger for module.
func NewModuleLogger(module Module) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := registry[module]; ok {
		return l
	}
	if core == nil {
		core = buildCore(cfg)
	}
	l := &Logger{module: module, z: zap.New(core).Named(string(module)).Sugar()}
	registry[module] = l
	return l
}

// NewWith returns a derived Logger that always logs kvs in addition to
// whatever is passed to a call, the `logger.NewWith()` convention for
// attaching instance-scoped fields (e.g. chain id, node address) once
// at construction time.
func (l *Logger) NewWith(kvs ...interface{}) *Logger {
	merged := make(Fields, len(l.fields)+len(kvs)/2)
	for k, v := range l.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		if k, ok := kvs[i].(string); ok {
			merged[k] = kvs[i+1]
		}
	}
	return &Logger{module: l.module, z: l.z, fields: merged}
}

// WithFields snapshots ctx's diagnostic Fields onto a derived Logger.
// Dynamic workers call this immediately after being spawned so every
// line they emit still carries fn_name/node/group context even though
// they run on a different goroutine than their publisher.
func (l *Logger) WithFields(fields Fields) *Logger {
	return l.NewWith(fields.flatten()...)
}

func (l *Logger) kvs(extra []interface{}) []interface{} {
	if !cfg.ContextLogging || len(l.fields) == 0 {
		return extra
	}
	return append(l.fields.flatten(), extra...)
}

func (l *Logger) Trace(msg string, kvs ...interface{}) { l.z.Debugw(msg, l.kvs(kvs)...) }
func (l *Logger) Debug(msg string, kvs ...interface{})  { l.z.Debugw(msg, l.kvs(kvs)...) }
func (l *Logger) Info(msg string, kvs ...interface{})   { l.z.Infow(msg, l.kvs(kvs)...) }
func (l *Logger) Warn(msg string, kvs ...interface{})   { l.z.Warnw(msg, l.kvs(kvs)...) }
func (l *Logger) Error(msg string, kvs ...interface{})  { l.z.Errorw(msg, l.kvs(kvs)...) }
func (l *Logger) Crit(msg string, kvs ...interface{}) {
	l.z.Errorw(msg, l.kvs(kvs)...)
	_, _ = fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	os.Exit(1)
}
