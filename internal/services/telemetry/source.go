package telemetry

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// streamKey identifies one logical log-tailing connection. Repeated
// EnsureStreaming calls with an equal key reuse the running stream.
type streamKey struct {
	prefix   string
	deviceID string
}

type stream struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

// Service implements TelemetryService on top of an adb logcat
// subprocess per (prefix, device) pair, all feeding one shared
// LogBuffer.
type Service struct {
	buffer  *LogBuffer
	parser  *Parser
	adbPath string
	logger  arbor.ILogger

	mu      sync.Mutex
	streams map[streamKey]*stream
}

// NewService creates the telemetry service. adbPath is the adb binary
// to spawn ("adb" resolves via PATH when empty).
func NewService(buffer *LogBuffer, parser *Parser, adbPath string, logger arbor.ILogger) *Service {
	if adbPath == "" {
		adbPath = "adb"
	}
	return &Service{
		buffer:  buffer,
		parser:  parser,
		adbPath: adbPath,
		logger:  logger,
		streams: make(map[streamKey]*stream),
	}
}

var _ interfaces.TelemetryService = (*Service)(nil)

// Buffer exposes the shared line buffer for components that scan raw
// lines directly.
func (s *Service) Buffer() *LogBuffer { return s.buffer }

// Parser exposes the record parser bound to this service's marker.
func (s *Service) Parser() *Parser { return s.parser }

// EnsureStreaming idempotently starts or reuses a logcat stream scoped
// to the given tag prefix and optional device serial. Lines containing
// the prefix are appended to the shared buffer as they arrive, until
// process shutdown.
func (s *Service) EnsureStreaming(ctx context.Context, prefix, deviceID string) error {
	if prefix == "" {
		prefix = s.parser.Marker()
	}
	key := streamKey{prefix: prefix, deviceID: deviceID}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Registry membership is the liveness signal: the reader goroutine
	// removes the entry when its stream ends.
	if _, ok := s.streams[key]; ok {
		return nil
	}

	// Confirm a device is actually reachable before tailing.
	if err := s.checkDevice(ctx, deviceID); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStreamUnavailable, err)
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	args := []string{}
	if deviceID != "" {
		args = append(args, "-s", deviceID)
	}
	args = append(args, "logcat", "-v", "time")

	cmd := exec.CommandContext(streamCtx, s.adbPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("%w: stdout pipe: %v", models.ErrStreamUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("%w: start %s logcat: %v", models.ErrStreamUnavailable, s.adbPath, err)
	}

	s.streams[key] = &stream{cmd: cmd, cancel: cancel}
	s.logger.Info().
		Str("prefix", prefix).
		Str("device", deviceID).
		Msg("Log stream started")

	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, prefix) {
				s.buffer.Append(line)
			}
		}
		// Stream ended: drop the registration so a later call restarts.
		if err := cmd.Wait(); err != nil && streamCtx.Err() == nil {
			s.logger.Warn().Err(err).Str("prefix", prefix).Msg("Log stream ended")
		}
		s.mu.Lock()
		if cur, ok := s.streams[key]; ok && cur.cmd == cmd {
			delete(s.streams, key)
		}
		s.mu.Unlock()
	}()

	return nil
}

// checkDevice verifies a device is connected and responsive.
func (s *Service) checkDevice(ctx context.Context, deviceID string) error {
	args := []string{}
	if deviceID != "" {
		args = append(args, "-s", deviceID)
	}
	args = append(args, "get-state")

	out, err := exec.CommandContext(ctx, s.adbPath, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("adb get-state: %v (%s)", err, strings.TrimSpace(string(out)))
	}
	if state := strings.TrimSpace(string(out)); state != "device" {
		return fmt.Errorf("device state %q", state)
	}
	return nil
}

// FilterRecords answers a filtered structured-record query over the
// current buffer contents.
func (s *Service) FilterRecords(keyword string) []models.ParsedRecord {
	return s.parser.FilterRecords(s.buffer.Snapshot(), keyword)
}

// RawLines returns a snapshot of the buffered lines in arrival order.
func (s *Service) RawLines() []string {
	return s.buffer.Snapshot()
}

// Stop tears down all active streams.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, st := range s.streams {
		st.cancel()
		delete(s.streams, key)
	}
}
