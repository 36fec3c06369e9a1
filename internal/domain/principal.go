package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Principal is an authenticated user together with the profile of its role.
// The set of implementations is closed: GymPrincipal, TrainerPrincipal,
// StudentPrincipal and GenericPrincipal.
type Principal interface {
	UserID() primitive.ObjectID
	Role() Role
	principal()
}

type GymPrincipal struct {
	User *User
	Gym  *GymProfile
}

type TrainerPrincipal struct {
	User    *User
	Trainer *TrainerProfile
}

type StudentPrincipal struct {
	User    *User
	Student *StudentProfile
}

// GenericPrincipal is a user without a role-specific profile.
type GenericPrincipal struct {
	User *User
}

func (p *GymPrincipal) UserID() primitive.ObjectID     { return p.User.ID }
func (p *TrainerPrincipal) UserID() primitive.ObjectID { return p.User.ID }
func (p *StudentPrincipal) UserID() primitive.ObjectID { return p.User.ID }
func (p *GenericPrincipal) UserID() primitive.ObjectID { return p.User.ID }

func (p *GymPrincipal) Role() Role     { return RoleGym }
func (p *TrainerPrincipal) Role() Role { return RoleTrainer }
func (p *StudentPrincipal) Role() Role { return RoleStudent }
func (p *GenericPrincipal) Role() Role { return RoleGeneric }

func (*GymPrincipal) principal()     {}
func (*TrainerPrincipal) principal() {}
func (*StudentPrincipal) principal() {}
func (*GenericPrincipal) principal() {}

// MatchPrincipal dispatches p to the handler of its variant.
// Handlers are positional on purpose: introducing a new role adds a parameter,
// which turns every call site into a compile error until it is handled.
func MatchPrincipal[T any](
	p Principal,
	gym func(*GymPrincipal) T,
	trainer func(*TrainerPrincipal) T,
	student func(*StudentPrincipal) T,
	generic func(*GenericPrincipal) T,
) T {
	switch v := p.(type) {
	case *GymPrincipal:
		return gym(v)
	case *TrainerPrincipal:
		return trainer(v)
	case *StudentPrincipal:
		return student(v)
	case *GenericPrincipal:
		return generic(v)
	}
	panic("domain: unknown principal variant")
}
