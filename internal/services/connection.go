package services

import (
	"context"
	"fmt"

	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/utils"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

// ConnectionService runs the startup/investor link lifecycle:
//
//	invite  (founder)  -> INVITED --accept (investor)--> ACTIVE
//	request (investor) -> PENDING --approve (founder)--> ACTIVE
//
// Rejection deletes the mapping. Every transition is a conditional update
// on the expected status, so concurrent callers cannot both win.
type ConnectionService struct {
	db        *gorm.DB
	notifier  Notifier
	templates *Templates
	activity  *StartupActivityService
}

func NewConnectionService(db *gorm.DB, notifier Notifier, templates *Templates, activity *StartupActivityService) *ConnectionService {
	return &ConnectionService{db: db, notifier: notifier, templates: templates, activity: activity}
}

type InviteInvestorRequest struct {
	InvestorEmail string              `json:"investorEmail" binding:"required,email"`
	InvestorRole  models.InvestorRole `json:"investorRole"`
}

type ConnectStartupRequest struct {
	StartupID    string              `json:"startupId" binding:"required,notblank"`
	InvestorRole models.InvestorRole `json:"investorRole"`
}

var errConnectionExists = response.NewBadRequest("A connection already exists between this startup and investor.")

func existingConnectionError(status models.MappingStatus) error {
	switch status {
	case models.MappingInvited:
		return response.NewBadRequest("An invitation has already been sent to this investor.")
	case models.MappingPending:
		return response.NewBadRequest("This investor has already requested a connection.")
	case models.MappingActive:
		return response.NewBadRequest("This investor is already connected to your startup.")
	default:
		return errConnectionExists
	}
}

// findExisting returns the mapping of startupID held by either identity.
func (s *ConnectionService) findExisting(db *gorm.DB, startupID, investorID, email string) (*models.StartupInvestorMapping, error) {
	q := db.Where("startup_id = ?", startupID)
	switch {
	case investorID != "" && email != "":
		q = q.Where("investor_id = ? OR investor_email = ?", investorID, email)
	case investorID != "":
		q = q.Where("investor_id = ?", investorID)
	default:
		q = q.Where("investor_email = ?", email)
	}

	var m models.StartupInvestorMapping
	if err := q.First(&m).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// InviteInvestor creates an INVITED mapping addressed to an email.
func (s *ConnectionService) InviteInvestor(ctx context.Context, founderUserID, investorEmail string, role models.InvestorRole) (*models.StartupInvestorMapping, error) {
	db := s.db.WithContext(ctx)
	startup, err := startupForFounder(db, founderUserID)
	if err != nil {
		return nil, err
	}

	email := utils.NormalizeEmail(investorEmail)

	// an investor who already has a profile may have requested by id
	var investorID string
	var invUser models.User
	if err := db.Where("email = ?", email).First(&invUser).Error; err == nil {
		var inv models.Investor
		if err := db.Where("user_id = ?", invUser.ID).First(&inv).Error; err == nil {
			investorID = inv.ID
		}
	}

	existing, err := s.findExisting(db, startup.ID, investorID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, existingConnectionError(existing.Status)
	}

	mapping := models.StartupInvestorMapping{
		StartupID:    startup.ID,
		InvestorRole: role,
		Status:       models.MappingInvited,
	}
	mapping.SetCounterparty(models.ByInvestorEmail(email))
	if err := db.Create(&mapping).Error; err != nil {
		if isDuplicate(err) {
			return nil, errConnectionExists
		}
		return nil, err
	}

	logger.Infof("[Connection] %s invited %s (mapping %s)", startup.Name, email, mapping.ID)
	s.notifier.Notify(ctx, s.templates.ConnectionInvite(email, startup.Name, mapping.ID))
	return &mapping, nil
}

// RequestConnection creates a PENDING mapping from an investor to a startup.
func (s *ConnectionService) RequestConnection(ctx context.Context, investorUserID, startupID string, role models.InvestorRole) (*models.StartupInvestorMapping, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := first(db, &user, "Investor not found.", "id = ?", investorUserID); err != nil {
		return nil, err
	}
	investor, err := investorForUser(db, user.ID)
	if err != nil {
		return nil, err
	}
	var startup models.Startup
	if err := first(db, &startup, "Startup not found.", "id = ?", startupID); err != nil {
		return nil, err
	}

	existing, err := s.findExisting(db, startup.ID, investor.ID, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, existingConnectionError(existing.Status)
	}

	mapping := models.StartupInvestorMapping{
		StartupID:    startup.ID,
		InvestorRole: role,
		Status:       models.MappingPending,
	}
	mapping.SetCounterparty(models.ByInvestorID(investor.ID))
	if err := db.Create(&mapping).Error; err != nil {
		if isDuplicate(err) {
			return nil, errConnectionExists
		}
		return nil, err
	}

	var founder models.User
	if err := first(db, &founder, "Founder not found.", "id = ?", startup.FounderUserID); err != nil {
		return nil, err
	}

	logger.Infof("[Connection] %s requested %s (mapping %s)", investor.FirmName, startup.Name, mapping.ID)
	s.notifier.Notify(ctx, s.templates.ConnectionRequest(founder.Email, firmOrName(investor, &user), mapping.ID))
	return &mapping, nil
}

func (s *ConnectionService) GetMapping(ctx context.Context, id string) (*models.StartupInvestorMapping, error) {
	var m models.StartupInvestorMapping
	if err := first(s.db.WithContext(ctx), &m, "Connection not found.", "id = ?", id); err != nil {
		return nil, err
	}
	return &m, nil
}

// founderMapping loads a mapping and checks it belongs to the founder's
// startup. Foreign mappings look missing.
func (s *ConnectionService) founderMapping(db *gorm.DB, founderUserID, mappingID string) (*models.StartupInvestorMapping, *models.Startup, error) {
	var m models.StartupInvestorMapping
	if err := first(db, &m, "Connection not found.", "id = ?", mappingID); err != nil {
		return nil, nil, err
	}
	var startup models.Startup
	if err := first(db, &startup, "Startup not found.", "id = ?", m.StartupID); err != nil {
		return nil, nil, err
	}
	if founderUserID != "" && startup.FounderUserID != founderUserID {
		return nil, nil, response.NewNotFound("Connection not found.")
	}
	return &m, &startup, nil
}

// investorParty resolves the investor side of a mapping to profile and user.
// Either may be nil for an invitee who has not signed up yet.
func (s *ConnectionService) investorParty(db *gorm.DB, m *models.StartupInvestorMapping) (*models.Investor, *models.User) {
	cp := m.Counterparty()
	switch cp.Kind {
	case models.CounterpartyByID:
		var inv models.Investor
		if err := db.Where("id = ?", cp.Value).First(&inv).Error; err != nil {
			return nil, nil
		}
		var u models.User
		if err := db.Where("id = ?", inv.UserID).First(&u).Error; err != nil {
			return &inv, nil
		}
		return &inv, &u
	case models.CounterpartyByEmail:
		var u models.User
		if err := db.Where("email = ?", cp.Value).First(&u).Error; err != nil {
			return nil, &models.User{Email: cp.Value}
		}
		var inv models.Investor
		if err := db.Where("user_id = ?", u.ID).First(&inv).Error; err != nil {
			return nil, &u
		}
		return &inv, &u
	}
	return nil, nil
}

// transition moves a mapping from one status to another, failing when the
// row is no longer in the expected status.
func transition(db *gorm.DB, id string, from models.MappingStatus, updates map[string]interface{}) (bool, error) {
	res := db.Model(&models.StartupInvestorMapping{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ApproveConnection activates a PENDING request on behalf of the founder.
func (s *ConnectionService) ApproveConnection(ctx context.Context, founderUserID, mappingID string) (*models.StartupInvestorMapping, error) {
	db := s.db.WithContext(ctx)
	m, startup, err := s.founderMapping(db, founderUserID, mappingID)
	if err != nil {
		return nil, err
	}
	errNotPending := response.NewNotFound("Only pending requests can be approved by founder.")
	if m.Status != models.MappingPending {
		return nil, errNotPending
	}

	ok, err := transition(db, m.ID, models.MappingPending, map[string]interface{}{"status": models.MappingActive})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotPending
	}
	m.Status = models.MappingActive

	var founder models.User
	_ = db.Where("id = ?", startup.FounderUserID).First(&founder).Error
	investor, invUser := s.investorParty(db, m)
	if invUser != nil && invUser.Email != "" {
		s.notifier.Notify(ctx, s.templates.ConnectionStatus(founder.Email, founder.Name, invUser.Email, startup.Name, "approved", "founder"))
	}
	s.recordConnected(ctx, startup, investor, invUser)
	return m, nil
}

// AcceptInvitation activates an INVITED mapping addressed to investorEmail
// and binds the investor's profile id in place of the email.
func (s *ConnectionService) AcceptInvitation(ctx context.Context, mappingID, investorEmail string) (*models.StartupInvestorMapping, error) {
	db := s.db.WithContext(ctx)
	email := utils.NormalizeEmail(investorEmail)

	var m models.StartupInvestorMapping
	if err := db.Where("id = ? AND investor_email = ?", mappingID, email).First(&m).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, response.NewBadRequest("invitation is invalid")
		}
		return nil, err
	}
	errExpired := response.NewBadRequest("This invitation is invalid or has expired.")
	if m.Status != models.MappingInvited {
		return nil, errExpired
	}

	var invUser models.User
	if err := first(db, &invUser, "Investor user not found.", "email = ?", email); err != nil {
		return nil, err
	}
	var investor models.Investor
	if err := first(db, &investor, "Investor record not found.", "user_id = ?", invUser.ID); err != nil {
		return nil, err
	}
	var startup models.Startup
	if err := first(db, &startup, "Startup not found.", "id = ?", m.StartupID); err != nil {
		return nil, err
	}
	var founder models.User
	if err := first(db, &founder, "Founder user not found.", "id = ?", startup.FounderUserID); err != nil {
		return nil, err
	}

	m.SetCounterparty(models.ByInvestorID(investor.ID))
	ok, err := transition(db, m.ID, models.MappingInvited, map[string]interface{}{
		"investor_id":    m.InvestorID,
		"investor_email": nil,
		"status":         models.MappingActive,
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, errConnectionExists
		}
		return nil, err
	}
	if !ok {
		return nil, errExpired
	}
	m.Status = models.MappingActive

	s.notifier.Notify(ctx, s.templates.ConnectionStatus(invUser.Email, invUser.Name, founder.Email, startup.Name, "accepted", "investor"))
	s.recordConnected(ctx, &startup, &investor, &invUser)
	return &m, nil
}

// RejectByFounder deletes a PENDING request after notifying the investor.
func (s *ConnectionService) RejectByFounder(ctx context.Context, founderUserID, mappingID string) error {
	db := s.db.WithContext(ctx)
	m, startup, err := s.founderMapping(db, founderUserID, mappingID)
	if err != nil {
		return err
	}
	if m.Status != models.MappingPending {
		return response.NewBadRequest("Only pending requests can be rejected by founder.")
	}

	var founder models.User
	_ = db.Where("id = ?", startup.FounderUserID).First(&founder).Error
	if _, invUser := s.investorParty(db, m); invUser != nil && invUser.Email != "" {
		s.notifier.Notify(ctx, s.templates.ConnectionRejected(invUser.Email, founder.Name, startup.Name, true))
	}

	return db.Where("id = ? AND status = ?", m.ID, models.MappingPending).Delete(&models.StartupInvestorMapping{}).Error
}

// RejectByInvestor deletes an INVITED mapping addressed to the caller after
// notifying the founder.
func (s *ConnectionService) RejectByInvestor(ctx context.Context, investorEmail, mappingID string) error {
	db := s.db.WithContext(ctx)
	email := utils.NormalizeEmail(investorEmail)

	var m models.StartupInvestorMapping
	if err := first(db, &m, "Invitation not found.", "id = ?", mappingID); err != nil {
		return err
	}
	if cp := m.Counterparty(); cp.Kind == models.CounterpartyByEmail && cp.Value != email {
		return response.NewNotFound("Invitation not found.")
	}
	if m.Status != models.MappingInvited {
		return response.NewBadRequest("Only invited connections can be rejected by investor.")
	}

	var startup models.Startup
	if err := first(db, &startup, "Startup not found.", "id = ?", m.StartupID); err != nil {
		return err
	}
	var founder models.User
	if err := first(db, &founder, "Founder user not found.", "id = ?", startup.FounderUserID); err != nil {
		return err
	}
	var invUser models.User
	_ = db.Where("email = ?", email).First(&invUser).Error

	s.notifier.Notify(ctx, s.templates.ConnectionRejected(founder.Email, displayName(invUser.Name, email), startup.Name, false))
	return db.Where("id = ? AND status = ?", m.ID, models.MappingInvited).Delete(&models.StartupInvestorMapping{}).Error
}

func (s *ConnectionService) recordConnected(ctx context.Context, startup *models.Startup, investor *models.Investor, user *models.User) {
	if s.activity == nil {
		return
	}
	who := "a new investor"
	if investor != nil || user != nil {
		who = firmOrName(investor, user)
	}
	if err := s.activity.Upsert(ctx, startup.ID, startup.Name, fmt.Sprintf("Connected with %s", who)); err != nil {
		logger.Warnf("[Connection] Failed to record activity for %s: %v", startup.ID, err)
	}
}

func firmOrName(inv *models.Investor, u *models.User) string {
	if inv != nil && inv.FirmName != "" {
		return inv.FirmName
	}
	if u != nil {
		return displayName(u.Name, u.Email)
	}
	return "An investor"
}
