// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"lead_portal_backend/internal/events"
	apphttp "lead_portal_backend/internal/http"
	"lead_portal_backend/internal/leads/handler"
	"lead_portal_backend/internal/leads/management"
	"lead_portal_backend/internal/leads/qualification"
	"lead_portal_backend/internal/leads/repository"
	"lead_portal_backend/internal/leads/scoring"
	"lead_portal_backend/internal/leads/transport"
	"lead_portal_backend/platform/logger"
	"lead_portal_backend/platform/phone"
	"lead_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	management    *management.Service
	qualification *qualification.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, engine *scoring.Engine, phones *phone.Normalizer, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)

	// Focused services (vertical slices)
	mgmtSvc := management.New(repo, eventBus, phones)
	qualSvc := qualification.New(repo, engine, eventBus, log)

	return &Module{
		handler:       handler.New(mgmtSvc, qualSvc, val),
		management:    mgmtSvc,
		qualification: qualSvc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ManagementService exposes lead CRUD for other modules.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// QualificationService exposes scoring for the scheduler worker.
func (m *Module) QualificationService() *qualification.Service {
	return m.qualification
}

// SetRescoreEnqueuer wires the background rescore client.
func (m *Module) SetRescoreEnqueuer(enqueuer qualification.RescoreEnqueuer) {
	m.qualification.SetRescoreEnqueuer(enqueuer)
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"), ctx.AdminMiddleware)
}
