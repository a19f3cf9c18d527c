package readers

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/mmrrnn/universe/internal/apperror"
)

// PCI vendor ids as found in <card>/device/vendor.
const (
	pciVendorAMD   = "0x1002"
	pciVendorIntel = "0x8086"
)

var cardName = regexp.MustCompile(`^card(\d+)$`)

// drmCard locates the ordinal-th DRM card of one PCI vendor under root.
// Card numbers are shared by all vendors, so the card is matched on the
// vendor file rather than by number.
type drmCard struct {
	fs        afero.Fs
	root      string
	pciVendor string
	ordinal   int
}

// dir returns the card directory, e.g. /sys/class/drm/card1.
func (c drmCard) dir() (string, error) {
	entries, err := afero.ReadDir(c.fs, c.root)
	if err != nil {
		return "", apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext(c.root))
	}

	type card struct {
		num  int
		path string
	}
	var cards []card
	for _, e := range entries {
		m := cardName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		path := filepath.Join(c.root, e.Name())
		vendor, err := afero.ReadFile(c.fs, filepath.Join(path, "device", "vendor"))
		if err != nil || !strings.EqualFold(strings.TrimSpace(string(vendor)), c.pciVendor) {
			continue
		}
		cards = append(cards, card{num: num, path: path})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].num < cards[j].num })

	if c.ordinal >= len(cards) {
		return "", apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithContext("no drm card "+strconv.Itoa(c.ordinal)+" for vendor "+c.pciVendor))
	}
	return cards[c.ordinal].path, nil
}

func readNumber(fs afero.Fs, path string) (float64, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, apperror.New(apperror.CodeHardwareProbeFailed,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}
	return v, nil
}

// hwmonTemperature reads the first hwmon temp1_input under device, in
// degrees Celsius. ok is false when the device exposes no sensor.
func hwmonTemperature(fs afero.Fs, device string) (temp float32, ok bool, err error) {
	inputs, _ := afero.Glob(fs, filepath.Join(device, "hwmon", "hwmon*", "temp1_input"))
	if len(inputs) == 0 {
		return 0, false, nil
	}
	milli, err := readNumber(fs, inputs[0])
	if err != nil {
		return 0, false, err
	}
	return float32(milli / 1000), true, nil
}
