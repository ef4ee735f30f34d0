package handler

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	UserInfoCtx    ContextKey = "userInfo"
	WorkCtx        ContextKey = "work"
	PostulationCtx ContextKey = "postulation"
	WorkSessionCtx ContextKey = "workSession"
)
