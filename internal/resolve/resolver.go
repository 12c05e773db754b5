// Package resolve turns free-text street addresses into canonical BBLs, using
// the external lookup service when configured and a local fallback table when
// it is not, fails, or finds no match.
package resolve

import (
	"context"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/pkg/geoclient"
)

var (
	// ErrInvalidAddress marks a blank or unusable input address.
	ErrInvalidAddress = eris.New("resolve: invalid address")

	// ErrNotFound marks an address neither path could resolve. A miss is never
	// papered over with a guessed identifier.
	ErrNotFound = eris.New("resolve: address not found")
)

// Path values recorded on a Resolution.
const (
	PathGeoclient = "geoclient"
	PathFallback  = "fallback"
)

// Resolution is a successful address lookup.
type Resolution struct {
	BBL     profile.BBL `json:"bbl"`
	Address string      `json:"address"`
	Borough string      `json:"borough,omitempty"`
	ZipCode string      `json:"zip_code,omitempty"`
	Path    string      `json:"path"`
}

// Resolver resolves addresses via the external service with a local fallback.
type Resolver struct {
	client   geoclient.Client
	fallback map[string]fallbackEntry
}

// New builds a Resolver. client may be nil when no API credentials are
// configured; resolution then runs on the fallback table alone.
func New(client geoclient.Client, fallbackFile string) (*Resolver, error) {
	table, err := loadFallback(fallbackFile)
	if err != nil {
		return nil, err
	}
	return &Resolver{client: client, fallback: table}, nil
}

// Resolve maps one free-text address to a canonical BBL. External failures
// degrade to the fallback path; only a miss on both paths is an error.
func (r *Resolver) Resolve(ctx context.Context, address string) (*Resolution, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrInvalidAddress
	}

	if r.client != nil {
		res, err := r.resolveExternal(ctx, address)
		if err == nil && res != nil {
			return res, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			zap.L().Warn("external lookup failed, trying fallback table",
				zap.String("address", address), zap.Error(err))
		}
	}

	if entry, ok := r.fallback[normalizeAddress(stripBorough(address))]; ok {
		return &Resolution{
			BBL:     entry.BBL,
			Address: entry.Address,
			Borough: entry.Borough,
			ZipCode: entry.ZipCode,
			Path:    PathFallback,
		}, nil
	}

	return nil, ErrNotFound
}

// resolveExternal runs the service lookup. A nil Resolution with nil error
// means the service answered but had no match.
func (r *Resolver) resolveExternal(ctx context.Context, address string) (*Resolution, error) {
	houseNumber, street, borough := splitAddress(address)
	if houseNumber == "" || street == "" {
		return nil, nil
	}

	addr, err := r.client.Lookup(ctx, houseNumber, street, borough)
	if err != nil {
		return nil, err
	}
	if !addr.Matched {
		return nil, nil
	}

	bbl, err := profile.ParseBBL(addr.BBL)
	if err != nil {
		zap.L().Warn("external lookup returned unparseable identifier",
			zap.String("address", address), zap.String("bbl", addr.BBL))
		return nil, nil
	}

	matched := strings.TrimSpace(addr.HouseNumber + " " + addr.StreetName)
	if matched == "" {
		matched = address
	}
	return &Resolution{
		BBL:     bbl,
		Address: matched,
		Borough: addr.Borough,
		ZipCode: addr.ZipCode,
		Path:    PathGeoclient,
	}, nil
}

// boroughNames are recognized both as a comma-separated suffix and embedded
// in the address text.
var boroughNames = []string{"Manhattan", "Brooklyn", "Bronx", "Queens", "Staten Island"}

// splitAddress breaks free text into the house number, street, and optional
// borough the lookup endpoint wants.
func splitAddress(address string) (houseNumber, street, borough string) {
	if i := strings.Index(address, ","); i >= 0 {
		rest := strings.TrimSpace(address[i+1:])
		address = strings.TrimSpace(address[:i])
		for _, b := range boroughNames {
			if strings.EqualFold(rest, b) {
				borough = b
				break
			}
		}
	}
	if borough == "" {
		address, borough = extractBorough(address)
	}

	fields := strings.Fields(address)
	if len(fields) < 2 {
		return "", "", borough
	}
	if !strings.ContainsFunc(fields[0], unicode.IsDigit) {
		return "", "", borough
	}
	return fields[0], strings.Join(fields[1:], " "), borough
}

// extractBorough removes an embedded borough name from the address text.
func extractBorough(address string) (string, string) {
	lower := strings.ToLower(address)
	for _, b := range boroughNames {
		idx := strings.Index(lower, strings.ToLower(b))
		if idx < 0 {
			continue
		}
		cleaned := address[:idx] + address[idx+len(b):]
		cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, ",", " "))
		return cleaned, b
	}
	return address, ""
}

// stripBorough drops a borough qualifier so fallback keys stay street-address
// only.
func stripBorough(address string) string {
	if i := strings.Index(address, ","); i >= 0 {
		rest := strings.TrimSpace(address[i+1:])
		for _, b := range boroughNames {
			if strings.EqualFold(rest, b) {
				return strings.TrimSpace(address[:i])
			}
		}
	}
	cleaned, _ := extractBorough(address)
	return cleaned
}

// normalizeAddress lowercases and collapses whitespace for fallback keys.
func normalizeAddress(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
