package models

import "time"

// Barcode represents a persisted barcode generation.
type Barcode struct {
	ID         string         `json:"id" bson:"_id,omitempty"`
	Format     string         `json:"format" bson:"format"`
	Text       string         `json:"text" bson:"text"`
	Options    map[string]any `json:"options" bson:"options"`
	MimeType   string         `json:"mimeType" bson:"mimeType"`
	FilePath   string         `json:"filePath,omitempty" bson:"filePath,omitempty"`
	CreatedBy  string         `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt  time.Time      `json:"createdAt" bson:"createdAt"`
	UsageCount int64          `json:"usageCount" bson:"usageCount"`
}
