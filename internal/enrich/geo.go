package enrich

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// Geo looks up the country and autonomous system of remote addresses in
// GeoLite2 databases. Either database may be absent.
type Geo struct {
	country *maxminddb.Reader
	asn     *maxminddb.Reader
}

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

type asnRecord struct {
	Number       uint   `maxminddb:"autonomous_system_number"`
	Organization string `maxminddb:"autonomous_system_organization"`
}

// OpenGeo opens the country and ASN databases at the given paths. An empty
// path skips that database; if both are empty OpenGeo returns nil, nil.
func OpenGeo(countryPath, asnPath string) (*Geo, error) {
	if countryPath == "" && asnPath == "" {
		return nil, nil
	}

	g := &Geo{}
	if countryPath != "" {
		r, err := maxminddb.Open(countryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open country database: %w", err)
		}
		g.country = r
	}
	if asnPath != "" {
		r, err := maxminddb.Open(asnPath)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to open ASN database: %w", err)
		}
		g.asn = r
	}
	return g, nil
}

// Lookup returns the ISO country code and AS organization for ip.
// Private, loopback and unparseable addresses yield empty strings.
func (g *Geo) Lookup(ip string) (country, asName string) {
	if g == nil {
		return "", ""
	}
	addr := net.ParseIP(ip)
	if addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
		return "", ""
	}

	if g.country != nil {
		var rec countryRecord
		if err := g.country.Lookup(addr, &rec); err == nil {
			country = rec.Country.ISOCode
			if country == "" {
				country = rec.RegisteredCountry.ISOCode
			}
		}
	}
	if g.asn != nil {
		var rec asnRecord
		if err := g.asn.Lookup(addr, &rec); err == nil {
			asName = rec.Organization
		}
	}
	return country, asName
}

// Close releases both databases.
func (g *Geo) Close() error {
	if g == nil {
		return nil
	}
	var errs []error
	if g.country != nil {
		errs = append(errs, g.country.Close())
	}
	if g.asn != nil {
		errs = append(errs, g.asn.Close())
	}
	return errors.Join(errs...)
}
