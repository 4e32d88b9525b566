package models

import "time"

// 事件类型
const (
	EventRequestSubmitted   = "request.submitted"
	EventRequestCancelled   = "request.cancelled"
	EventRequestApproved    = "request.approved"
	EventRequestRejected    = "request.rejected"
	EventAffiliationCreated = "affiliation.created"
	EventAffiliationRemoved = "affiliation.removed"
	EventReturnInitiated    = "return.initiated"
	EventReturnCompleted    = "return.completed"
	EventReturnRejected     = "return.rejected"
	EventPackageUpgraded    = "package.upgraded"
)

// Event 推送给某个用户的业务事件
type Event struct {
	Type      string      `json:"type"`
	Recipient string      `json:"recipient"`
	Actor     string      `json:"actor,omitempty"`
	EntityID  uint        `json:"entity_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
