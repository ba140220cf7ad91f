package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// mDNS service identity.
const (
	ServiceType = "_compass._tcp"
	Domain      = "local."
)

// TXT record keys.
const (
	TXTKeySensorID = "id"
	TXTKeyVersion  = "v"
	TXTKeyKind     = "kind"
)

// ErrMissingSensorID is returned when an advertisement or TXT record set
// lacks a sensor ID.
var ErrMissingSensorID = errors.New("feed: missing sensor id")

// AdvertiseInfo describes one advertised feed.
type AdvertiseInfo struct {
	SensorID string
	Version  string
	Kind     string
	Port     int
}

// InstanceName is the mDNS instance name for the feed.
func (i AdvertiseInfo) InstanceName() string {
	id := i.SensorID
	if len(id) > 8 {
		id = id[:8]
	}
	return "compass-" + id
}

// EncodeTXT returns the TXT records for the advertisement.
func EncodeTXT(info AdvertiseInfo) []string {
	txt := []string{TXTKeySensorID + "=" + info.SensorID}
	if info.Version != "" {
		txt = append(txt, TXTKeyVersion+"="+info.Version)
	}
	if info.Kind != "" {
		txt = append(txt, TXTKeyKind+"="+info.Kind)
	}
	return txt
}

// DecodeTXT parses TXT records into an AdvertiseInfo. Unknown keys and
// entries without '=' are ignored.
func DecodeTXT(txt []string) (AdvertiseInfo, error) {
	var info AdvertiseInfo
	for _, rec := range txt {
		k, v, ok := strings.Cut(rec, "=")
		if !ok {
			continue
		}
		switch k {
		case TXTKeySensorID:
			info.SensorID = v
		case TXTKeyVersion:
			info.Version = v
		case TXTKeyKind:
			info.Kind = v
		}
	}
	if info.SensorID == "" {
		return info, ErrMissingSensorID
	}
	return info, nil
}

// AdvertiserConfig configures an Advertiser.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface. Empty
	// means all interfaces.
	Interface string

	// TTL of the announced records. Zero uses the zeroconf default.
	TTL time.Duration
}

// Advertiser announces feeds over multicast DNS.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser. Nothing is announced until
// Advertise is called.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// Advertise starts announcing info, replacing any previous announcement.
func (a *Advertiser) Advertise(info AdvertiseInfo) error {
	if info.SensorID == "" {
		return ErrMissingSensorID
	}
	if info.Port <= 0 || info.Port > 65535 {
		return fmt.Errorf("feed: invalid port %d", info.Port)
	}

	ifaces, err := interfaces(a.config.Interface)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.InstanceName(),
		ServiceType,
		Domain,
		info.Port,
		EncodeTXT(info),
		ifaces,
		opts...,
	)
	if err != nil {
		return fmt.Errorf("feed: register %s: %w", ServiceType, err)
	}
	a.server = server
	return nil
}

// Stop withdraws the announcement. Safe to call multiple times.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// Service is a feed found on the network.
type Service struct {
	Instance  string
	Host      string
	Port      int
	Addresses []string
	Info      AdvertiseInfo
}

// Addr returns a dialable address for the service, preferring IPv4.
func (s Service) Addr() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// browseMDNS runs the mDNS query for feeds. Tests replace it.
var browseMDNS = func(ctx context.Context, entries, removed chan *zeroconf.ServiceEntry, opts []zeroconf.ClientOption) error {
	return zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
}

// Browser streams the feeds found on the network.
type Browser struct {
	services chan Service

	mu  sync.Mutex
	err error
}

// Services returns the discovered feeds. The channel is closed when
// browsing ends; Err then reports whether mDNS failed.
func (b *Browser) Services() <-chan Service {
	return b.services
}

// Err returns the mDNS error that ended browsing, or nil when browsing
// ended with its context.
func (b *Browser) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Browser) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Browse looks for feeds until ctx is done or the mDNS query fails.
// Entries with unusable TXT records are skipped, and an instance is
// reported again only after it was withdrawn. A nil logger discards.
func Browse(ctx context.Context, iface string, logger *slog.Logger) (*Browser, error) {
	ifaces, err := interfaces(iface)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var opts []zeroconf.ClientOption
	if ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	ctx, cancel := context.WithCancel(ctx)
	b := &Browser{services: make(chan Service)}
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer cancel()
		defer close(b.services)
		seen := make(map[string]bool)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc, ok := entryToService(entry)
				if !ok || seen[svc.Instance] {
					continue
				}
				seen[svc.Instance] = true
				select {
				case b.services <- svc:
				case <-ctx.Done():
					return
				}
			case entry, ok := <-removed:
				if ok {
					delete(seen, entry.Instance)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := browseMDNS(ctx, entries, removed, opts); err != nil {
			logger.Warn("mdns browse failed", "service", ServiceType, "error", err)
			b.fail(fmt.Errorf("feed: browse %s: %w", ServiceType, err))
			cancel()
		}
	}()

	return b, nil
}

func entryToService(entry *zeroconf.ServiceEntry) (Service, bool) {
	info, err := DecodeTXT(entry.Text)
	if err != nil {
		return Service{}, false
	}
	info.Port = entry.Port

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return Service{
		Instance:  entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Addresses: addrs,
		Info:      info,
	}, true
}

// interfaces resolves name to an interface list; nil means all.
func interfaces(name string) ([]net.Interface, error) {
	if name == "" {
		return nil, nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("feed: interface %q: %w", name, err)
	}
	return []net.Interface{*iface}, nil
}
