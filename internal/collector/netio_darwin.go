//go:build darwin

package collector

import (
	"bufio"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kostyay/netinspect/internal/model"
)

// processCounters runs nettop for one sample of per-process byte counters.
// nettop reports no packet counts, so packets use the host split.
func processCounters(ctx context.Context) ([]processIO, error) {
	cmd := exec.CommandContext(ctx, "nettop", "-P", "-L", "1", "-x", "-J", "bytes_in,bytes_out")
	output, err := cmd.Output()
	if err != nil {
		// nettop may be missing or need elevated privileges.
		return nil, nil
	}
	return parseNettopOutput(string(output)), nil
}

// parseNettopOutput parses lines of the form "name.pid,bytes_in,bytes_out".
// Fields may be separated by commas or tabs.
func parseNettopOutput(output string) []processIO {
	byPID := make(map[int32]int)
	var groups []processIO
	now := time.Now()

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.FieldsFunc(scanner.Text(), func(r rune) bool {
			return r == ',' || r == '\t'
		})
		if len(fields) < 3 {
			continue
		}

		name := strings.TrimSpace(fields[0])
		dot := strings.LastIndexByte(name, '.')
		if dot < 0 {
			continue // header
		}
		pid, err := strconv.ParseInt(name[dot+1:], 10, 32)
		if err != nil || pid <= 0 {
			continue
		}
		in, errIn := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
		out, errOut := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 64)
		if errIn != nil || errOut != nil {
			continue
		}

		if gi, ok := byPID[int32(pid)]; ok {
			groups[gi].Stats.BytesRecv += in
			groups[gi].Stats.BytesSent += out
			continue
		}
		byPID[int32(pid)] = len(groups)
		groups = append(groups, processIO{
			Key:   "pid:" + strconv.FormatInt(pid, 10),
			PIDs:  []int32{int32(pid)},
			Stats: model.NetIOStats{BytesRecv: in, BytesSent: out, UpdatedAt: now},
		})
	}
	return groups
}
