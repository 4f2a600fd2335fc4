package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/eslsoft/traitscore/internal/infrastructure/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
)

// InterceptorLogger adapts a logrus logger to the grpc middleware logger.
func InterceptorLogger(logger logrus.FieldLogger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		entry := logger.WithFields(pairsToFields(fields)).WithContext(ctx)
		switch lvl {
		case logging.LevelDebug:
			entry.Debug(msg)
		case logging.LevelInfo:
			entry.Info(msg)
		case logging.LevelWarn:
			entry.Warn(msg)
		case logging.LevelError:
			entry.Error(msg)
		default:
			entry.WithField("level", int(lvl)).Info(msg)
		}
	})
}

func pairsToFields(kv []any) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields[key] = kv[i+1]
	}
	return fields
}

// Logger logs one line per unary Connect call.
func Logger(logger logrus.FieldLogger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			duration := time.Since(start)
			var code connect.Code
			if err != nil {
				code = connect.CodeOf(err)
			}
			level := determineLogLevel(code, err)
			fields := buildLogFields(req, resp, code, duration, err)

			logger.WithFields(fields).WithContext(ctx).Log(level, "request completed")

			return resp, err
		}
	}
}

func determineLogLevel(code connect.Code, err error) logrus.Level {
	if err == nil {
		return logrus.InfoLevel
	}
	switch code {
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition, connect.CodeNotFound,
		connect.CodeAlreadyExists, connect.CodePermissionDenied, connect.CodeUnauthenticated:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func buildLogFields(req connect.AnyRequest, resp connect.AnyResponse, code connect.Code, duration time.Duration, err error) logrus.Fields {
	fields := requestFields(req, code, duration)
	for k, v := range responseFields(resp) {
		fields[k] = v
	}
	if err != nil {
		fields[logrus.ErrorKey] = err.Error()
	}
	return fields
}

func requestFields(req connect.AnyRequest, code connect.Code, duration time.Duration) logrus.Fields {
	fields := logrus.Fields{
		"procedure": req.Spec().Procedure,
		"status":    statusText(code),
		"duration":  duration.String(),
	}

	appendStringField(fields, "http_method", req.HTTPMethod())
	appendStringField(fields, "stream", req.Spec().StreamType.String())
	appendStringField(fields, "idempotency", req.Spec().IdempotencyLevel.String())

	peer := req.Peer()
	appendStringField(fields, "peer_addr", peer.Addr)
	appendStringField(fields, "protocol", peer.Protocol)
	appendStringField(fields, "query", peer.Query.Encode())

	header := req.Header()
	appendStringField(fields, "user_agent", header.Get("User-Agent"))
	appendStringField(fields, "request_id", header.Get("X-Request-Id"))
	appendStringField(fields, "client_ip", firstForwardedFor(header))
	appendStringField(fields, "content_type", header.Get("Content-Type"))
	appendStringField(fields, "accept", header.Get("Accept"))
	appendStringField(fields, "content_encoding", header.Get("Content-Encoding"))
	appendStringField(fields, "grpc_encoding", header.Get("Grpc-Encoding"))

	fields["request_header_count"] = headerCount(header)
	if cl := contentLength(header); cl >= 0 {
		fields["request_bytes"] = cl
	}

	return fields
}

func responseFields(resp connect.AnyResponse) logrus.Fields {
	fields := logrus.Fields{}
	if resp == nil {
		return fields
	}
	if cl := contentLength(resp.Header()); cl >= 0 {
		fields["response_bytes"] = cl
	}
	if len(resp.Header()) > 0 {
		fields["response_header_count"] = headerCount(resp.Header())
	}
	if len(resp.Trailer()) > 0 {
		fields["response_trailer_count"] = headerCount(resp.Trailer())
	}
	return fields
}

// statusText reports "ok" for successful calls, where connect.Code is zero.
func statusText(code connect.Code) string {
	if code == 0 {
		return "ok"
	}
	return code.String()
}

func appendStringField(fields logrus.Fields, key, value string) {
	if value == "" {
		return
	}
	fields[key] = value
}

func firstForwardedFor(header http.Header) string {
	forwarded := header.Get("X-Forwarded-For")
	if forwarded == "" {
		return ""
	}
	for _, part := range strings.Split(forwarded, ",") {
		if candidate := strings.TrimSpace(part); candidate != "" {
			return candidate
		}
	}
	return ""
}

func headerCount(header http.Header) int {
	count := 0
	for key := range header {
		count += len(header[key])
	}
	return count
}

func contentLength(header http.Header) int {
	if header == nil {
		return -1
	}
	if cl := header.Get("Content-Length"); cl != "" {
		if parsed, err := strconv.Atoi(cl); err == nil {
			return parsed
		}
	}
	return -1
}

// NewLogger builds a configured logrus logger from application config.
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	switch cfg.Log.Format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}
	return logger, nil
}
