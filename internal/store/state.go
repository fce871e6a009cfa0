package store

import "github.com/noah-isme/algotutor-api/internal/models"

// State is the application-state container. It is built once at startup and
// shared by reference with every service.
type State struct {
	Principals *Collection[models.Principal]
	Lessons    *Collection[models.Lesson]
	News       *Collection[models.NewsArticle]
	Uploads    *Collection[models.UploadedFile]
	Questions  *Collection[models.Question]
}

// New constructs an empty state.
func New() *State {
	return &State{
		Principals: NewCollection(func(p models.Principal) string { return p.ID }),
		Lessons:    NewCollection(func(l models.Lesson) string { return l.ID }),
		News:       NewCollection(func(n models.NewsArticle) string { return n.ID }),
		Uploads:    NewCollection(func(u models.UploadedFile) string { return u.ID }),
		Questions:  NewCollection(func(q models.Question) string { return q.ID }),
	}
}
