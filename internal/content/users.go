package content

import "errors"

var ErrNoUsers = errors.New("no users available to own generated content")

// UserPool is a read-only snapshot of user ids taken once per run.
type UserPool struct {
	ids []string
}

func NewUserPool(ids []string) (*UserPool, error) {
	if len(ids) == 0 {
		return nil, ErrNoUsers
	}
	snapshot := make([]string, len(ids))
	copy(snapshot, ids)
	return &UserPool{ids: snapshot}, nil
}

func (p *UserPool) Len() int {
	return len(p.ids)
}

// Pick draws an owner uniformly at random.
func (p *UserPool) Pick(rng Random) string {
	return p.ids[rng.Intn(len(p.ids))]
}
