package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/database"
	"github.com/google/uuid"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for account->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// CreateSession creates a new session for an account and stores it in Redis.
// If the account already has a session, the old one is invalidated so the
// 7-day timer resets from the current login. Returns the session token.
func CreateSession(accountID uuid.UUID) (string, error) {
	InvalidateAccountSessions(accountID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + accountID.String()

	if err := database.RedisClient.Set(ctx, sessionKey, accountID.String(), SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks if a session token is valid and returns the account ID.
func ValidateSession(sessionToken string) (uuid.UUID, bool, error) {
	if sessionToken == "" {
		return uuid.Nil, false, nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	accountIDStr, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err != nil {
		return uuid.Nil, false, nil
	}

	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return uuid.Nil, false, err
	}

	return accountID, true, nil
}

// InvalidateSession removes a session from Redis.
func InvalidateSession(sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	// Get account ID before deleting
	accountIDStr, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && accountIDStr != "" {
		userSessionKey := UserSessionKeyPrefix + accountIDStr
		database.RedisClient.Del(ctx, userSessionKey)
	}

	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// InvalidateAccountSessions invalidates all sessions for an account (useful
// when the password changes).
func InvalidateAccountSessions(accountID uuid.UUID) error {
	ctx := context.Background()
	userSessionKey := UserSessionKeyPrefix + accountID.String()

	sessionToken, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		sessionKey := SessionKeyPrefix + sessionToken
		database.RedisClient.Del(ctx, sessionKey)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}
