package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestOfficerService(t *testing.T) (OfficerService, *mocks.MockOfficerRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockOfficerRepository(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewOfficerService(repoMock, logger), repoMock
}

func TestLogin(t *testing.T) {
	active := &models.Officer{OfficerID: "RPF-101", PhoneNumber: "9876543210", IsActive: true}
	inactive := &models.Officer{OfficerID: "RPF-102", PhoneNumber: "9876543211", IsActive: false}

	tests := []struct {
		name      string
		officerID string
		phone     string
		stored    *models.Officer
		wantErr   error
	}{
		{name: "success", officerID: "RPF-101", phone: "9876543210", stored: active},
		{name: "wrong phone", officerID: "RPF-101", phone: "0000000000", stored: active, wantErr: ErrInvalidCredentials},
		{name: "inactive", officerID: "RPF-102", phone: "9876543211", stored: inactive, wantErr: ErrInvalidCredentials},
		{name: "unknown officer", officerID: "RPF-999", phone: "1", stored: nil, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repoMock := newTestOfficerService(t)
			repoMock.EXPECT().FindByOfficerID(gomock.Any(), tt.officerID).Return(tt.stored, nil)

			officer, err := svc.Login(context.Background(), tt.officerID, tt.phone)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.stored, officer)
		})
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	svc, _ := newTestOfficerService(t)

	_, err := svc.Login(context.Background(), "RPF-101", " ")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestCreateAndListOfficers(t *testing.T) {
	svc, repoMock := newTestOfficerService(t)
	ctx := context.Background()
	officer := &models.Officer{OfficerID: "RPF-101", Name: "A. Rao", IsActive: true}

	repoMock.EXPECT().Create(ctx, officer).Return(nil)
	repoMock.EXPECT().List(ctx).Return([]*models.Officer{officer}, nil)

	require.NoError(t, svc.CreateOfficer(ctx, officer))
	officers, err := svc.ListOfficers(ctx)
	require.NoError(t, err)
	assert.Len(t, officers, 1)
}
