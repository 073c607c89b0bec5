// Package host determines the machine's current name and address and
// compares it to the last persisted observation.
package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"

	"go.uber.org/zap"

	"ipalert/internal/config"
	"ipalert/internal/models"
)

// ErrInterfaceResolution is returned when the current address cannot be determined
var ErrInterfaceResolution = errors.New("cannot resolve current IP address")

// Strategy selects how the current address is determined
type Strategy int

const (
	// ViaHostnameResolution resolves the host name through the system resolver
	ViaHostnameResolution Strategy = iota
	// ViaInterfaceEnumeration reads the address list of a named interface
	ViaInterfaceEnumeration
)

func (s Strategy) String() string {
	switch s {
	case ViaHostnameResolution:
		return "hostname"
	case ViaInterfaceEnumeration:
		return "interface"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// StrategyFor returns the address strategy for the given GOOS
func StrategyFor(goos string) Strategy {
	switch goos {
	case "windows", "plan9", "js", "wasip1":
		return ViaHostnameResolution
	default:
		return ViaInterfaceEnumeration
	}
}

// NewResolver creates the resolver appropriate for the running platform
func NewResolver(cfg *config.Config, logger *zap.Logger) models.Resolver {
	return NewResolverWithStrategy(StrategyFor(runtime.GOOS), cfg.InterfaceName(), logger)
}

// NewResolverWithStrategy creates a resolver using an explicit strategy
func NewResolverWithStrategy(s Strategy, iface string, logger *zap.Logger) models.Resolver {
	if s == ViaHostnameResolution {
		return &HostnameResolver{
			hostname: os.Hostname,
			lookup:   net.DefaultResolver.LookupIPAddr,
			logger:   logger,
		}
	}
	return &InterfaceResolver{
		iface:    iface,
		fallback: config.DefaultInterface,
		hostname: os.Hostname,
		addrs:    interfaceAddrs,
		logger:   logger,
	}
}

// HostnameResolver resolves the address the host name maps to
type HostnameResolver struct {
	hostname func() (string, error)
	lookup   func(ctx context.Context, host string) ([]net.IPAddr, error)
	logger   *zap.Logger
}

// Resolve returns the host name and its first IPv4 address
func (r *HostnameResolver) Resolve(ctx context.Context) (models.HostRecord, error) {
	name, err := r.hostname()
	if err != nil {
		return models.HostRecord{}, fmt.Errorf("%w: hostname: %w", ErrInterfaceResolution, err)
	}

	addrs, err := r.lookup(ctx, name)
	if err != nil {
		return models.HostRecord{}, fmt.Errorf("%w: lookup %s: %w", ErrInterfaceResolution, name, err)
	}

	for _, a := range addrs {
		if ip4 := a.IP.To4(); ip4 != nil {
			r.logger.Debug("resolved address via hostname",
				zap.String("hostname", name),
				zap.String("ip", ip4.String()),
			)
			return models.HostRecord{Hostname: name, IP: ip4.String()}, nil
		}
	}

	return models.HostRecord{}, fmt.Errorf("%w: %s has no IPv4 address", ErrInterfaceResolution, name)
}

// InterfaceResolver reads the address bound to a network interface
type InterfaceResolver struct {
	iface    string
	fallback string
	hostname func() (string, error)
	addrs    func(name string) ([]net.Addr, error)
	logger   *zap.Logger
}

// Resolve returns the host name and the first IPv4 address of the configured
// interface, or of the fallback interface when the configured one is absent.
func (r *InterfaceResolver) Resolve(ctx context.Context) (models.HostRecord, error) {
	name, err := r.hostname()
	if err != nil {
		return models.HostRecord{}, fmt.Errorf("%w: hostname: %w", ErrInterfaceResolution, err)
	}

	iface := r.iface
	addrs, err := r.addrs(iface)
	if err != nil && iface != r.fallback {
		r.logger.Warn("configured interface unavailable, using fallback",
			zap.String("interface", iface),
			zap.String("fallback", r.fallback),
			zap.Error(err),
		)
		iface = r.fallback
		addrs, err = r.addrs(iface)
	}
	if err != nil {
		return models.HostRecord{}, fmt.Errorf("%w: interface %s: %w", ErrInterfaceResolution, iface, err)
	}

	ip := firstIPv4(addrs)
	if ip == nil {
		return models.HostRecord{}, fmt.Errorf("%w: interface %s has no IPv4 address", ErrInterfaceResolution, iface)
	}

	r.logger.Debug("resolved address via interface",
		zap.String("interface", iface),
		zap.String("ip", ip.String()),
	)
	return models.HostRecord{Hostname: name, IP: ip.String()}, nil
}

func interfaceAddrs(name string) ([]net.Addr, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, err
	}
	return ifi.Addrs()
}

// firstIPv4 returns the first IPv4 entry of addrs, or nil
func firstIPv4(addrs []net.Addr) net.IP {
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil {
			return ip4
		}
	}
	return nil
}
