package sqlc

import (
	"context"
	"net"

	"github.com/sqlc-dev/pqtype"
)

type AnalyticsManager struct {
	queries Querier
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	return &AnalyticsManager{queries: queries}
}

// ServerInet turns the host part of a listener address into the inet
// key used by the analytics table.
func ServerInet(localAddr string) (pqtype.Inet, error) {
	host, _, err := net.SplitHostPort(localAddr)
	if err != nil {
		return pqtype.Inet{}, err
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return pqtype.Inet{}, &net.AddrError{Err: "invalid ip", Addr: host}
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip = v4
		bits = 32
	}
	return pqtype.Inet{
		IPNet: net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)},
		Valid: true,
	}, nil
}

func (a *AnalyticsManager) IncrementGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()
	return a.queries.IncrementGamesCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) IncrementGamesJoinedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()
	return a.queries.IncrementGamesJoinedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()
	return a.queries.GetGamesCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetGamesJoinedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()
	return a.queries.GetGamesJoinedCount(ctx, serverIpNet)
}
