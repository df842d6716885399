package registry

import (
	"bufio"
	"bytes"
	_ "embed"
	"strings"
	"sync"
)

// Bundled subset of the IEEE OUI assignments, tab-separated
// "AA:BB:CC<TAB>Vendor" lines. Used to annotate devices that have no
// configured label.
//
//go:embed oui_data.txt
var ouiRawData []byte

// OUITable maps hardware address prefixes to manufacturer names. The table
// is parsed lazily on first lookup.
type OUITable struct {
	once    sync.Once
	vendors map[string]string
}

// NewOUITable returns an empty, not-yet-loaded table.
func NewOUITable() *OUITable {
	return &OUITable{}
}

// Lookup returns the manufacturer for a hardware address in any common
// format, or empty string when the prefix is unassigned in the bundled data.
func (o *OUITable) Lookup(mac string) string {
	o.once.Do(o.load)

	prefix := ouiPrefix(mac)
	if prefix == "" {
		return ""
	}
	return o.vendors[prefix]
}

func (o *OUITable) load() {
	o.vendors = make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(ouiRawData))
	for sc.Scan() {
		prefix, vendor, ok := strings.Cut(sc.Text(), "\t")
		if !ok {
			continue
		}
		prefix = strings.ToUpper(strings.TrimSpace(prefix))
		vendor = strings.TrimSpace(vendor)
		if prefix != "" && vendor != "" {
			o.vendors[prefix] = vendor
		}
	}
}

// ouiPrefix reduces a MAC in any common format to its first three octets in
// uppercase colon-separated form.
func ouiPrefix(mac string) string {
	hex := strings.ToUpper(mac)
	for _, sep := range []string{":", "-", "."} {
		hex = strings.ReplaceAll(hex, sep, "")
	}
	if len(hex) < 6 {
		return ""
	}
	return hex[0:2] + ":" + hex[2:4] + ":" + hex[4:6]
}
