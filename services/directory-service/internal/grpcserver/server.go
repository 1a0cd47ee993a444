//go:build protogen

package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/citaplan/citaplan/libs/db"
	directoryv1 "github.com/citaplan/citaplan/protos/gen/directory/v1"
	"github.com/citaplan/citaplan/services/directory-service/internal/storage"
)

type server struct {
	directoryv1.UnimplementedDirectoryServiceServer
	pool          *db.Pool
	repo          *storage.Repository
	clinicDefault []int
}

func Register(grpcServer *grpc.Server, pool *db.Pool, repo *storage.Repository, clinicDefaultOffsets []int) {
	directoryv1.RegisterDirectoryServiceServer(grpcServer, &server{
		pool:          pool,
		repo:          repo,
		clinicDefault: clinicDefaultOffsets,
	})
}

func (s *server) GetDoctorPolicy(ctx context.Context, req *directoryv1.DoctorPolicyRequest) (*directoryv1.DoctorPolicyResponse, error) {
	offsets, err := s.repo.ReminderOffsets(ctx, req.GetDoctorId(), s.clinicDefault)
	if err != nil {
		return nil, err
	}
	out := make([]int32, 0, len(offsets))
	for _, mins := range offsets {
		if mins > 0 {
			out = append(out, int32(mins))
		}
	}
	return &directoryv1.DoctorPolicyResponse{
		DoctorId:               req.GetDoctorId(),
		ReminderOffsetsMinutes: out,
	}, nil
}

func (s *server) GetSpecialty(ctx context.Context, req *directoryv1.SpecialtyRequest) (*directoryv1.SpecialtyResponse, error) {
	spec, err := s.repo.GetSpecialty(ctx, req.GetCode())
	if err != nil {
		if storage.IsNotFound(err) {
			return &directoryv1.SpecialtyResponse{Code: req.GetCode()}, nil
		}
		return nil, err
	}
	return &directoryv1.SpecialtyResponse{
		Code:        spec.Code,
		Name:        spec.Name,
		HighPrivacy: spec.HighPrivacy,
	}, nil
}
