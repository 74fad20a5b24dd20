package service

import "context"

type actorKey struct{}

// WithActor помечает контекст тем, кто выполняет действие (id пользователя или "tg:<id>" для бота)
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext пустая строка, если актор не задан
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

type requestInfoKey struct{}

type requestInfo struct {
	ip        string
	userAgent string
}

// WithRequestInfo сохраняет ip и user-agent запроса для журнала аудита
func WithRequestInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{ip: ip, userAgent: userAgent})
}

func requestInfoFromContext(ctx context.Context) (string, string) {
	info, _ := ctx.Value(requestInfoKey{}).(requestInfo)
	return info.ip, info.userAgent
}
