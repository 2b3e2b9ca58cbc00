// Package logging provides structured logging for hypewriter.
//
// # Overview
//
// The package wraps Zap with:
//   - a custom Trace level (-2, below Debug)
//   - stdout, file and OpenTelemetry outputs
//   - automatic context fields (trace_id, project.id, request.id)
//   - field-name and pattern based redaction
//   - level-aware sampling (errors never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithProjectID(ctx, project.ID)
//	logger.Info(ctx, "project activated", zap.String("title", project.Title))
//
// The terminal UI owns stdout, so it logs to a file instead:
//
//	cfg.Output.Stdout = false
//	cfg.Output.File = "~/.config/hypewriter/hypewriter.log"
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	store := projectstore.New(client, history, tl.Logger)
//	...
//	tl.AssertLogged(t, zapcore.ErrorLevel, "error loading projects")
package logging
