package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/AngelCh415/studio-metrics/internal/engine"
	"github.com/AngelCh415/studio-metrics/internal/telemetry"
)

var ErrMissingRole = errors.New("missing required export")

type File struct {
	Name string
	Data []byte
}

// Bundle is a parsed set of exports ready for the engine. Digest identifies
// identical uploads.
type Bundle struct {
	Input  engine.Input
	Digest string
	Names  map[Role]string
}

// Assemble assigns each file a role by name and parses it. New visitors and
// bookings are required; payments are optional.
func Assemble(files []File) (*Bundle, error) {
	byRole := map[Role]File{}
	for _, f := range files {
		role := ClassifyFile(f.Name)
		if role == RoleUnknown {
			return nil, fmt.Errorf("cannot tell what %q contains: name must mention new, booking, payment or sale", f.Name)
		}
		if prev, dup := byRole[role]; dup {
			return nil, fmt.Errorf("both %q and %q look like %s exports", prev.Name, f.Name, role)
		}
		byRole[role] = f
	}
	for _, r := range []Role{RoleNewVisitors, RoleBookings} {
		if _, ok := byRole[r]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRole, r)
		}
	}

	b := &Bundle{Names: map[Role]string{}}
	h := sha256.New()
	for _, r := range []Role{RoleNewVisitors, RoleBookings, RoleSales} {
		f, ok := byRole[r]
		if !ok {
			continue
		}
		rows, err := ParseCSV(f.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		telemetry.InputRows.WithLabelValues(string(r)).Add(float64(len(rows)))
		switch r {
		case RoleNewVisitors:
			b.Input.NewVisitors = rows
		case RoleBookings:
			b.Input.Bookings = rows
		case RoleSales:
			b.Input.Sales = rows
		}
		b.Names[r] = f.Name
		fmt.Fprintf(h, "%s:%d:", r, len(f.Data))
		h.Write(f.Data)
	}
	b.Digest = hex.EncodeToString(h.Sum(nil))
	return b, nil
}
