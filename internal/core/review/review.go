// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package review manages the user generated content attached to titles.

Reviews score a title; comments discuss a review. Both are always addressed
through their parent chain, so a review id under the wrong title is treated
as missing.

# Core Responsibility

  - Scoring: one review per user and title, scored from 1 to 10.
  - Discussion: comments threaded under a review.
  - Moderation: authors edit their own content; moderators and admins edit any.
*/
package review

import "time"

// # Domain

// Review is a scored opinion about a title.
type Review struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`

	TitleID  string `json:"-"`
	AuthorID string `json:"-"`
}

// Comment is a reply to a review.
type Comment struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`

	ReviewID string `json:"-"`
	AuthorID string `json:"-"`
}

// # Field Identifiers

const (
	FieldText  = "text"
	FieldScore = "score"
)

// Score bounds.
const (
	MinScore = 1
	MaxScore = 10
)
