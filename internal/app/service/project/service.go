package project

import (
	"context"
	"fmt"

	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/logctx"
	"github.com/lumenworks/storefront/pkg/tool"
	"github.com/lumenworks/storefront/pkg/types"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpdateRequest carries an operator PATCH. The server re-applies the
// reconciliation rule before persisting, so the stored state may differ from
// the requested one.
type UpdateRequest struct {
	Status           *string             `json:"status"`
	Description      *string             `json:"description"`
	Steps            []types.ProjectStep `json:"steps"`
	StepsSet         bool                `json:"-"`
	CurrentStepIndex *int                `json:"currentStepIndex"`
}

// Manager owns project persistence and the progress state machine.
type Manager interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	GetByProjectKey(ctx context.Context, key string) (*models.Project, error)
	Update(ctx context.Context, id string, req *UpdateRequest) (*models.Project, error)
	List(ctx context.Context, from, size int) ([]*models.Project, int64, error)
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) Manager {
	return &Service{db: db, log: log}
}

// Create inserts the project row if its key is not already present. Saga
// re-runs hit the conflict path and get the existing row back.
func (s *Service) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if p.ID == "" {
		p.ID = tool.GenerateUUIDV7()
	}
	if p.Status == "" {
		st := NewState()
		p.Status = st.Status
		p.CurrentStepIndex = st.CurrentStepIndex
		p.Steps = datatypes.NewJSONType([]types.ProjectStep{})
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "project_key"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.GetByProjectKey(ctx, p.ProjectKey)
	}
	logctx.FromCtx(ctx, s.log).Infow("project created", "project_key", p.ProjectKey)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetByProjectKey(ctx context.Context, key string) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).Where("project_key = ?", key).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies an operator edit through the state machine and reconciles
// before persisting.
func (s *Service) Update(ctx context.Context, id string, req *UpdateRequest) (*models.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	state := State{
		Status:           p.Status,
		CurrentStepIndex: p.CurrentStepIndex,
		Steps:            p.Steps.Data(),
	}

	if req.StepsSet {
		state.Steps = req.Steps
	}
	if req.CurrentStepIndex != nil {
		state.CurrentStepIndex = *req.CurrentStepIndex
	}
	if req.Status != nil {
		if err := state.SetStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	state.Reconcile()

	p.Status = state.Status
	p.CurrentStepIndex = state.CurrentStepIndex
	p.Steps = datatypes.NewJSONType(state.Steps)
	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("project updated", "project_key", p.ProjectKey, "status", p.Status)
	return p, nil
}

func (s *Service) List(ctx context.Context, from, size int) ([]*models.Project, int64, error) {
	if size <= 0 {
		size = 20
	}
	if from < 0 {
		from = 0
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	var rows []*models.Project
	if err := s.db.WithContext(ctx).Order("created_at desc").Offset(from).Limit(size).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return rows, total, nil
}
