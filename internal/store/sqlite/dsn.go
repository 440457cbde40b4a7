package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// DefaultFile is the database file used when a DSN names no path.
const DefaultFile = "wardrobe.db"

const scheme = "sqlite://"

// location is a parsed sqlite:// DSN.
type location struct {
	path   string
	params url.Values
	memory bool
}

func (l location) driverDSN() string {
	name := l.path
	if l.memory {
		name = ":memory:"
	}
	if len(l.params) == 0 {
		return name
	}
	return name + "?" + l.params.Encode()
}

func parseDSN(dsn string) (location, error) {
	rest, ok := strings.CutPrefix(dsn, scheme)
	if !ok {
		return location{}, fmt.Errorf("invalid sqlite DSN scheme, expected %s", scheme)
	}

	var loc location
	rawPath, rawQuery, _ := strings.Cut(rest, "?")
	if rawQuery != "" {
		params, err := url.ParseQuery(rawQuery)
		if err != nil {
			return location{}, fmt.Errorf("parsing query: %w", err)
		}
		loc.params = params
	}

	if rawPath == ":memory:" {
		loc.memory = true
		return loc, nil
	}

	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return location{}, fmt.Errorf("unescaping path: %w", err)
	}
	if path == "" {
		path = DefaultFile
	}
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}
	loc.path = path
	return loc, nil
}
