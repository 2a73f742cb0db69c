package services

import (
	"context"
	"time"

	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/utils"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

const (
	otpDigits     = 6
	otpTTL        = 10 * time.Minute
	resetTokenTTL = time.Hour
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
	notifier  Notifier
	templates *Templates
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, notifier Notifier, templates *Templates) *AuthService {
	return &AuthService{
		db:        db,
		jwtConfig: jwtCfg,
		notifier:  notifier,
		templates: templates,
		now:       time.Now,
	}
}

type SignupRequest struct {
	Name     string      `json:"name" binding:"required,notblank"`
	Email    string      `json:"email" binding:"required,email"`
	Phone    string      `json:"phone"`
	Password string      `json:"password" binding:"required,min=8,max=64"`
	Role     models.Role `json:"role" binding:"required,oneof=FOUNDER INVESTOR"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required,notblank"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=64"`
}

type LoginResult struct {
	Token    string       `json:"token"`
	ExpireAt time.Time    `json:"expireAt"`
	User     *models.User `json:"user"`
}

// Signup registers a user and mails a verification code. An unverified
// account with the same email is overwritten so users can retry signup.
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	email := utils.NormalizeEmail(req.Email)
	if !req.Role.Valid() {
		return nil, response.NewBadRequest("Invalid role.")
	}

	db := s.db.WithContext(ctx)
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil && user.Verified:
		return nil, response.NewBadRequest("Email address already in use.")
	case err != nil && !isRecordNotFound(err):
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	otp, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(otpTTL)

	user.Name = req.Name
	user.Email = email
	user.Phone = req.Phone
	user.PasswordHash = hash
	user.Role = req.Role
	user.Verified = false
	user.Onboarded = false
	user.OTP = otp
	user.OTPExpiresAt = &expires

	if err := db.Save(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, response.NewBadRequest("Email address already in use.")
		}
		return nil, err
	}

	s.notifier.Notify(ctx, s.templates.OTP(user.Email, otp))
	logger.Infof("[Auth] Registered %s as %s (pending verification)", user.Email, user.Role)
	return &user, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := first(s.db.WithContext(ctx), &user, "User not found.", "email = ?", utils.NormalizeEmail(email)); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyOTP marks the account verified. Verifying twice is a no-op.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return nil
	}
	if user.OTP == "" || user.OTP != otp || user.OTPExpiresAt == nil || !user.OTPExpiresAt.After(s.now()) {
		return response.NewBadRequest("Invalid or expired OTP.")
	}

	return s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"verified":       true,
		"otp":            "",
		"otp_expires_at": nil,
	}).Error
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return response.NewBadRequest("User is already verified.")
	}

	otp, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return err
	}
	expires := s.now().Add(otpTTL)
	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"otp":            otp,
		"otp_expires_at": expires,
	}).Error; err != nil {
		return err
	}

	s.notifier.Notify(ctx, s.templates.OTP(user.Email, otp))
	return nil
}

func (s *AuthService) expireHours() int {
	if s.jwtConfig.ExpireHour <= 0 {
		return 24
	}
	return s.jwtConfig.ExpireHour
}

// Login checks credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", utils.NormalizeEmail(req.Email)).First(&user).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, response.NewUnauthorized("Invalid email or password.")
		}
		return nil, err
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, response.NewUnauthorized("Invalid email or password.")
	}
	if !user.Verified {
		return nil, response.NewForbidden("Please verify your email before logging in.")
	}

	hours := s.expireHours()
	token, err := utils.GenerateToken(user.ID, user.Email, string(user.Role), hours)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		logger.Warnf("[Auth] Failed to record last login for %s: %v", user.ID, err)
	}

	return &LoginResult{
		Token:    token,
		ExpireAt: now.Add(time.Duration(hours) * time.Hour),
		User:     &user,
	}, nil
}

// ForgotPassword issues a one-hour reset token and mails it.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"password_reset_token":      token,
		"password_reset_expires_at": s.now().Add(resetTokenTTL),
	}).Error; err != nil {
		return err
	}

	s.notifier.Notify(ctx, s.templates.PasswordReset(user.Email, token))
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if req.Token == "" {
		return response.NewBadRequest("Invalid password reset token.")
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("password_reset_token = ?", req.Token).First(&user).Error; err != nil {
		if isRecordNotFound(err) {
			return response.NewBadRequest("Invalid password reset token.")
		}
		return err
	}
	if user.PasswordResetExpiresAt == nil || user.PasswordResetExpiresAt.Before(s.now()) {
		return response.NewBadRequest("Password reset token has expired.")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":             hash,
		"password_reset_token":      "",
		"password_reset_expires_at": nil,
	}).Error
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := first(s.db.WithContext(ctx), &user, "User not found.", "id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}
