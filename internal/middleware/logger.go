package middleware

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// HeaderRequestID carries the per-request correlation id
const HeaderRequestID = "X-Request-ID"

var (
	appLogger *log.Logger
)

// InitLogger sends log output to stdout and a rotated file in logDir.
// The returned closer flushes the file on shutdown.
func InitLogger(logDir string) (io.Closer, error) {
	absLogDir, err := filepath.Abs(logDir)
	if err != nil {
		absLogDir = logDir
	}

	if err := os.MkdirAll(absLogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", absLogDir, err)
	}

	currentDate := time.Now().Format("2006-01-02")

	appLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(absLogDir, fmt.Sprintf("app-%s.log", currentDate)),
		MaxSize:    10, // megabytes
		MaxBackups: 30,
		MaxAge:     30, // days
		Compress:   true,
		LocalTime:  true,
	}

	out := io.MultiWriter(os.Stdout, appLogFile)
	appLogger = log.New(out, "", log.LstdFlags)

	// services log through the standard logger
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	appLogger.Printf("[INFO] Logger initialized, log file: %s", appLogFile.Filename)

	return appLogFile, nil
}

// LogInfo logs info level messages
func LogInfo(format string, v ...interface{}) {
	logf("[INFO] "+format, v...)
}

// LogError logs error level messages
func LogError(format string, v ...interface{}) {
	logf("[ERROR] "+format, v...)
}

// LogDebug logs debug level messages
func LogDebug(format string, v ...interface{}) {
	if gin.Mode() == gin.ReleaseMode {
		return
	}
	logf("[DEBUG] "+format, v...)
}

func logf(format string, v ...interface{}) {
	if appLogger != nil {
		appLogger.Printf(format, v...)
	} else {
		log.Printf(format, v...)
	}
}

// RequestLoggerMiddleware logs method, URL, status and latency of every
// request, tagging each line with the request id.
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		fullURL := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			fullURL = fullURL + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		if statusCode >= 500 {
			LogError("%s %s | status=%d | latency=%v | request_id=%s",
				c.Request.Method, fullURL, statusCode, latency, requestID)
		} else {
			LogInfo("%s %s | status=%d | latency=%v | request_id=%s",
				c.Request.Method, fullURL, statusCode, latency, requestID)
		}
	}
}
