package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActionLog is the audit document written for every dispatched action and its outcome.
type ActionLog struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserId     string             `json:"user_id" bson:"user_id"`
	Cluster    string             `json:"cluster" bson:"cluster"`
	Target     string             `json:"target" bson:"target"`
	Action     string             `json:"action" bson:"action"`
	JobId      string             `json:"job_id" bson:"job_id"`
	State      string             `json:"state" bson:"state"`
	Message    string             `json:"message" bson:"message"`
	CreateTime time.Time          `json:"create_time" bson:"create_time"`
}

func (ActionLog) CollectionName() string {
	return "action_log"
}
