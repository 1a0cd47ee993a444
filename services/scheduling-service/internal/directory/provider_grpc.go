//go:build protogen

package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/citaplan/citaplan/libs/grpcx"
	directoryv1 "github.com/citaplan/citaplan/protos/gen/directory/v1"
)

type grpcProvider struct {
	client   directoryv1.DirectoryServiceClient
	fallback Provider
}

func NewDirectoryProvider(logger *slog.Logger, offsets []time.Duration, highPrivacySpecialties []string, addr string) (Provider, error) {
	fallback := NewStaticProvider(offsets, highPrivacySpecialties)
	if addr == "" {
		return fallback, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		logger.Warn("grpc directory provider unavailable, using fallback", "err", err)
		return fallback, nil
	}

	logger.Info("grpc directory provider enabled", "addr", addr)
	return &grpcProvider{client: directoryv1.NewDirectoryServiceClient(conn), fallback: fallback}, nil
}

func (p *grpcProvider) ReminderOffsets(ctx context.Context, doctorID string) ([]time.Duration, error) {
	resp, err := p.client.GetDoctorPolicy(ctx, &directoryv1.DoctorPolicyRequest{DoctorId: doctorID})
	if err != nil {
		return p.fallback.ReminderOffsets(ctx, doctorID)
	}
	var offsets []time.Duration
	for _, mins := range resp.GetReminderOffsetsMinutes() {
		if mins <= 0 {
			continue
		}
		offsets = append(offsets, time.Duration(mins)*time.Minute)
	}
	return offsets, nil
}

func (p *grpcProvider) HighPrivacy(ctx context.Context, specialty string) (bool, error) {
	resp, err := p.client.GetSpecialty(ctx, &directoryv1.SpecialtyRequest{Code: specialty})
	if err != nil {
		return p.fallback.HighPrivacy(ctx, specialty)
	}
	return resp.GetHighPrivacy(), nil
}
