//go:build linux

package collector

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/kostyay/netinspect/internal/model"
)

// processCounters reads /proc/[pid]/net/dev once per network namespace.
// Processes whose namespace cannot be read are left out.
func processCounters(ctx context.Context) ([]processIO, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	byNS := make(map[string]int)
	var groups []processIO
	for _, pid := range pids {
		if ctx.Err() != nil {
			break
		}
		ns, err := os.Readlink(procPath(pid, "ns/net"))
		if err != nil {
			continue
		}
		if gi, ok := byNS[ns]; ok {
			groups[gi].PIDs = append(groups[gi].PIDs, pid)
			continue
		}
		stats, err := readProcNetDev(pid)
		if err != nil {
			continue
		}
		stats.UpdatedAt = now
		byNS[ns] = len(groups)
		groups = append(groups, processIO{Key: ns, PIDs: []int32{pid}, Stats: stats, Packets: true})
	}
	return groups, nil
}

func procPath(pid int32, name string) string {
	return "/proc/" + strconv.Itoa(int(pid)) + "/" + name
}

// readProcNetDev reads network stats from /proc/[pid]/net/dev.
func readProcNetDev(pid int32) (model.NetIOStats, error) {
	f, err := os.Open(procPath(pid, "net/dev"))
	if err != nil {
		return model.NetIOStats{}, err
	}
	defer f.Close()
	return parseNetDev(f), nil
}

// parseNetDev sums the non-loopback interfaces of a net/dev table.
func parseNetDev(r io.Reader) model.NetIOStats {
	var stats model.NetIOStats
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if lineNum <= 2 {
			continue // Skip header lines
		}

		line := strings.TrimSpace(scanner.Text())
		iface, counters, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(iface) == "lo" {
			continue
		}

		fields := strings.Fields(counters)
		if len(fields) < 10 {
			continue
		}

		stats.BytesRecv += parseCounter(fields[0])
		stats.PacketsRecv += parseCounter(fields[1])
		stats.BytesSent += parseCounter(fields[8])
		stats.PacketsSent += parseCounter(fields[9])
	}

	return stats
}

func parseCounter(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}
