// Package enrich attaches application protocol, domain, country and AS
// metadata to observed flows.
package enrich

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kostyay/netinspect/internal/model"
	"github.com/kostyay/netinspect/internal/services"
)

// GeoLookup resolves an address to a country code and AS name.
type GeoLookup interface {
	Lookup(ip string) (country, asName string)
}

// HostnameCache resolves addresses to hostnames in the background.
type HostnameCache interface {
	Lookup(ctx context.Context, ip string, onResolved func(hostname string)) string
}

// Resolver receives resolutions that complete after a flow was stored.
type Resolver interface {
	Resolve(key model.ConnectionKey, res model.Resolution) bool
}

// Enricher fills the Resolution of observations before they reach the store.
type Enricher struct {
	geo          GeoLookup
	hostnames    HostnameCache
	resolver     Resolver
	serviceNames bool
	log          logrus.FieldLogger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithGeo enables country and AS lookups.
func WithGeo(g GeoLookup) Option {
	return func(e *Enricher) {
		// A typed nil *Geo must not be stored as a non-nil interface.
		if geo, ok := g.(*Geo); ok && geo == nil {
			return
		}
		e.geo = g
	}
}

// WithHostnames enables reverse DNS. Late answers are delivered to r.
func WithHostnames(c HostnameCache, r Resolver) Option {
	return func(e *Enricher) {
		e.hostnames = c
		e.resolver = r
	}
}

// WithServiceNames toggles port based application protocol detection.
func WithServiceNames(enabled bool) Option {
	return func(e *Enricher) { e.serviceNames = enabled }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Enricher) { e.log = l }
}

// New creates an Enricher. Service name detection is on by default.
func New(opts ...Option) *Enricher {
	e := &Enricher{
		serviceNames: true,
		log:          logrus.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich fills in the Resolution of each observation in place.
func (e *Enricher) Enrich(ctx context.Context, observations []model.Observation) {
	for i := range observations {
		obs := &observations[i]
		remote := RemoteAddr(obs.Key, obs.Direction)

		if e.serviceNames && obs.AppProtocol == "" {
			obs.AppProtocol = services.Detect(obs.Key)
		}
		if e.geo != nil && (obs.Country == "" || obs.ASName == "") {
			country, asName := e.geo.Lookup(remote)
			obs.Resolution.Merge(model.Resolution{Country: country, ASName: asName})
		}
		if e.hostnames != nil && obs.Domain == "" {
			obs.Domain = e.hostnames.Lookup(ctx, remote, e.lateHostname(obs.Key))
		}
	}
}

func (e *Enricher) lateHostname(key model.ConnectionKey) func(string) {
	return func(hostname string) {
		if e.resolver == nil {
			return
		}
		if !e.resolver.Resolve(key, model.Resolution{Domain: hostname}) {
			e.log.WithFields(logrus.Fields{
				"connection": key.String(),
				"domain":     hostname,
			}).Debug("resolved hostname for unknown connection")
		}
	}
}

// RemoteAddr returns the address of the peer on the other side of the host.
func RemoteAddr(key model.ConnectionKey, dir model.TrafficDirection) string {
	if dir == model.DirectionIncoming {
		return key.SrcAddr
	}
	return key.DstAddr
}
