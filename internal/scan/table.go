package scan

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/netvigil/netvigil/internal/device"
)

// readSystemTable returns the host's ARP cache as canonical address -> IP.
// On Linux it reads /proc/net/arp directly; elsewhere it shells out to
// `arp -a`. This is the fallback strategy: tool-independent on Linux, and
// limited to the local segment everywhere.
func readSystemTable(ctx context.Context) (map[device.Addr]string, error) {
	var output string
	platform := runtime.GOOS

	if platform == "linux" {
		data, err := os.ReadFile("/proc/net/arp")
		if err != nil {
			return nil, err
		}
		output = string(data)
	} else {
		out, err := exec.CommandContext(ctx, "arp", "-a").Output()
		if err != nil {
			return nil, err
		}
		output = string(out)
	}

	hosts := make(map[device.Addr]string)
	for ip, mac := range ParseARPOutput(output, platform) {
		addr, err := device.ParseAddr(mac)
		if err != nil {
			continue
		}
		if _, ok := hosts[addr]; !ok {
			hosts[addr] = ip
		}
	}
	return hosts, nil
}

var darwinARPLine = regexp.MustCompile(`\((\d+\.\d+\.\d+\.\d+)\) at ([0-9a-fA-F:]+)`)

// ParseARPOutput parses an ARP table listing for the given platform into an
// IP -> MAC map, with MACs normalized to uppercase colon-separated form.
// Incomplete entries and the broadcast address are skipped. Unknown
// platforms yield an empty map.
func ParseARPOutput(output, platform string) map[string]string {
	table := make(map[string]string)

	switch platform {
	case "linux":
		// /proc/net/arp: "IP address  HW type  Flags  HW address  Mask  Device"
		for i, line := range strings.Split(output, "\n") {
			fields := strings.Fields(line)
			if i == 0 || len(fields) < 4 {
				continue
			}
			// Flags 0x0 marks an incomplete entry.
			if fields[2] == "0x0" {
				continue
			}
			if mac := canonicalMAC(fields[3]); mac != "" {
				table[fields[0]] = mac
			}
		}

	case "windows":
		// "  192.168.1.1  aa-bb-cc-dd-ee-ff  dynamic"
		for _, line := range strings.Split(output, "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 || !strings.Contains(fields[1], "-") {
				continue
			}
			if mac := canonicalMAC(fields[1]); mac != "" {
				table[fields[0]] = mac
			}
		}

	case "darwin":
		// "? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0 ifscope [ethernet]"
		for _, line := range strings.Split(output, "\n") {
			if strings.Contains(line, "(incomplete)") {
				continue
			}
			m := darwinARPLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if mac := canonicalMAC(m[2]); mac != "" {
				table[m[1]] = mac
			}
		}
	}

	return table
}

// canonicalMAC normalizes a raw table entry, padding single-digit octets
// (macOS prints "0:1e:c2:9:23:4"). Returns empty string for unparseable
// input, the all-zero incomplete marker, and the broadcast address.
func canonicalMAC(raw string) string {
	sep := ":"
	if strings.Contains(raw, "-") {
		sep = "-"
	}
	octets := strings.Split(raw, sep)
	if len(octets) == 6 {
		for i, o := range octets {
			if len(o) == 1 {
				octets[i] = "0" + o
			}
		}
		raw = strings.Join(octets, ":")
	}

	addr, err := device.ParseAddr(raw)
	if err != nil {
		return ""
	}
	switch addr {
	case "00:00:00:00:00:00", "FF:FF:FF:FF:FF:FF":
		return ""
	}
	return string(addr)
}
