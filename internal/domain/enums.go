package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The backend serializes its enums by constant name (CLOSED_WON, IN_PROGRESS)
// while this client compares lower case values. Every enum decodes through
// NormalizeEnum so both spellings land on the same constant.

// NormalizeEnum lower-cases an enum value and joins words with underscores
func NormalizeEnum(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

func decodeEnum[T ~string](data []byte, dst *T, kind string) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid %s: %w", kind, err)
	}
	*dst = T(NormalizeEnum(s))
	return nil
}

// roleAliases maps backend role names that differ from the frontend ones
var roleAliases = map[Role]Role{
	"business_admin": RoleOwner,
}

// UnmarshalJSON accepts any casing and an optional ROLE_ prefix
func (r *Role) UnmarshalJSON(data []byte) error {
	if err := decodeEnum(data, r, "role"); err != nil {
		return err
	}
	*r = Role(strings.TrimPrefix(string(*r), "role_"))
	if alias, ok := roleAliases[*r]; ok {
		*r = alias
	}
	return nil
}

func (s *UserStatus) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "user status")
}

func (p *TenantPlan) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, p, "plan")
}

func (s *TenantStatus) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "tenant status")
}

func (s *CustomerStatus) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "customer status")
}

// UnmarshalJSON accepts "WON" as well as "won"
func (s *LeadStatus) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "lead status")
}

// UnmarshalJSON accepts "CLOSED_WON" as well as "closed_won"
func (s *DealStage) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "deal stage")
}

func (p *TicketPriority) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, p, "ticket priority")
}

func (s *TicketStatus) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "ticket status")
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "task status")
}

func (t *TaskType) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, t, "task type")
}

func (s *AppointmentStatus) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "appointment status")
}

func (t *InteractionType) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, t, "interaction type")
}

func (s *Sentiment) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, s, "sentiment")
}

func (t *NotificationType) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, t, "notification type")
}
