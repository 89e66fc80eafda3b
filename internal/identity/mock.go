package identity

import (
	"context"
	"sync/atomic"
)

// MockDeviceIdentity implements DeviceIdentity for testing.
type MockDeviceIdentity struct {
	SecureIDValue string
	SecureIDErr   error
	SourceValue   string
	// SecureIDPanic, when non-nil, makes GetSecureID panic with it.
	SecureIDPanic any

	calls atomic.Int64
}

// NewMockDeviceIdentity creates a MockDeviceIdentity with default values.
func NewMockDeviceIdentity() *MockDeviceIdentity {
	return &MockDeviceIdentity{
		SecureIDValue: "mock-device-id-12345",
		SourceValue:   "mock",
	}
}

func (m *MockDeviceIdentity) Source() string {
	return m.SourceValue
}

func (m *MockDeviceIdentity) GetSecureID(context.Context) (string, error) {
	m.calls.Add(1)
	if m.SecureIDPanic != nil {
		panic(m.SecureIDPanic)
	}
	if m.SecureIDErr != nil {
		return "", m.SecureIDErr
	}
	return m.SecureIDValue, nil
}

// Calls returns how many reads were made.
func (m *MockDeviceIdentity) Calls() int {
	return int(m.calls.Load())
}
