package keystore

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
)

func TestRedis_APIKey_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisFromClient(db, "test:")

	mock.ExpectGet("test:openai").SetVal("sk-from-redis")

	key, err := store.APIKey(context.Background(), "openai")
	if err != nil {
		t.Fatalf("APIKey failed: %v", err)
	}
	if key != "sk-from-redis" {
		t.Errorf("Expected 'sk-from-redis', got %q", key)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedis_APIKey_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisFromClient(db, "test:")

	mock.ExpectGet("test:groq").RedisNil()

	key, err := store.APIKey(context.Background(), "groq")
	if err != nil {
		t.Fatalf("Missing key should not be an error: %v", err)
	}
	if key != "" {
		t.Errorf("Expected empty key, got %q", key)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedis_APIKey_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisFromClient(db, "test:")

	mock.ExpectGet("test:xai").SetErr(errors.New("connection refused"))

	if _, err := store.APIKey(context.Background(), "xai"); err == nil {
		t.Error("Expected error to propagate")
	}
}

func TestRedis_SetAndRemove(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisFromClient(db, "test:")

	mock.ExpectSet("test:gemini", "AIza-key", 0).SetVal("OK")
	mock.ExpectDel("test:gemini").SetVal(1)

	if err := store.Set(context.Background(), "gemini", "AIza-key"); err != nil {
		t.Errorf("Set failed: %v", err)
	}
	if err := store.Remove(context.Background(), "gemini"); err != nil {
		t.Errorf("Remove failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedis_DefaultPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisFromClient(db, "")

	mock.ExpectGet("tlrouter:keys:cerebras").SetVal("csk")

	if key, _ := store.APIKey(context.Background(), "cerebras"); key != "csk" {
		t.Errorf("Expected 'csk', got %q", key)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestNewRedis_InvalidURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), RedisConfig{URL: "not-a-url"}); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestChain_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	chain := Chain{NewMemory(nil), NewRedisFromClient(db, "")}

	mock.ExpectPing().SetVal("PONG")
	if err := chain.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	if err := chain.Ping(context.Background()); err == nil {
		t.Error("Expected ping error to propagate")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}

	// A chain without remote stores has nothing to check.
	if err := (Chain{NewMemory(nil)}).Ping(context.Background()); err != nil {
		t.Errorf("Ping of local chain = %v", err)
	}
}
