package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONMap is a custom type for handling JSON data in database
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for database retrieval
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}

	return json.Unmarshal(bytes, j)
}

// FloatMap is a custom type for handling numeric threshold maps in JSONB
type FloatMap map[string]float64

// Value implements the driver.Valuer interface for database storage
func (m FloatMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *FloatMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FloatMap", value)
	}

	return json.Unmarshal(bytes, m)
}

// Alert is a configured alert definition. The engine only reads alerts;
// they are managed through the admin API.
type Alert struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code       string    `json:"code" gorm:"not null;size:100;uniqueIndex"`
	Libelle    string    `json:"libelle" gorm:"not null;size:200"`
	IsActive   bool      `json:"is_active" gorm:"default:true;index"`
	Rule       JSONMap   `json:"rule" gorm:"type:jsonb"`
	Thresholds FloatMap  `json:"thresholds" gorm:"type:jsonb"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Destinations []AlertDestination `json:"destinations" gorm:"foreignKey:AlertID"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// AlertDestination is one stored (channel, address) delivery target of an alert.
type AlertDestination struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AlertID   string    `json:"alert_id" gorm:"not null;index"`
	Channel   string    `json:"channel" gorm:"not null;size:20"`
	Address   string    `json:"address" gorm:"not null;size:500"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (d *AlertDestination) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// Template is a stored message template with {{var}} placeholders.
type Template struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code      string    `json:"code" gorm:"not null;size:100;uniqueIndex"`
	Subject   *string   `json:"subject" gorm:"size:500"`
	Body      string    `json:"body" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// ChannelConfig holds provider configuration for one delivery channel.
// Credentials stored here take precedence over environment variables.
type ChannelConfig struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Channel     string    `json:"channel" gorm:"not null;size:20;uniqueIndex"`
	Enabled     bool      `json:"enabled" gorm:"default:true"`
	Credentials JSONMap   `json:"credentials" gorm:"type:jsonb"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (c *ChannelConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Notification is the append-only audit row for one delivery attempt.
// Exactly one row is written per destination per dispatch, never mutated.
type Notification struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AlertID     string     `json:"alert_id" gorm:"not null;index"`
	Channel     string     `json:"channel" gorm:"not null;size:20;index"`
	Address     string     `json:"address" gorm:"not null;size:500"`
	Subject     string     `json:"subject" gorm:"size:500"`
	Body        string     `json:"body" gorm:"type:text"`
	Delivered   bool       `json:"delivered" gorm:"not null;index"`
	DeliveredAt *time.Time `json:"delivered_at"`
	Error       string     `json:"error" gorm:"type:text"`
	ContractID  *string    `json:"contract_id" gorm:"type:uuid;index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// TableName keeps the audit table name aligned with the platform schema.
func (Notification) TableName() string {
	return "notifications"
}

// PushSubscription is one registered browser push subscription for a user.
type PushSubscription struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `json:"user_id" gorm:"not null;size:200;index"`
	Endpoint  string    `json:"endpoint" gorm:"not null;size:1000"`
	P256dh    string    `json:"p256dh" gorm:"size:500"`
	Auth      string    `json:"auth" gorm:"size:500"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (s *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
