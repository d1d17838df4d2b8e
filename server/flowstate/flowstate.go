// Package flowstate tracks in-flight social login attempts between the
// redirect to the provider and the callback.
package flowstate

import "time"

type LoginFlow struct {
	Nonce       string
	RedirectURL string
	CreatedAt   time.Time
}

type Repo interface {
	Upsert(state string, flow *LoginFlow) error
	Get(state string) (*LoginFlow, error)
	Delete(state string) error
}
