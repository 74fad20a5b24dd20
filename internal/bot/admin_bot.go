package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
)

// sender то, что боту нужно от Telegram API для ответов
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// AdminBot консоль администратора в Telegram
type AdminBot struct {
	api          *tgbotapi.BotAPI
	sender       sender
	adminService *service.AdminService
	adminIDs     []int64 // Telegram ID с правами админа
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	log          *slog.Logger
}

// NewAdminBot авторизуется в Telegram и создаёт бота
func NewAdminBot(token string, adminService *service.AdminService, adminIDs []int64) (*AdminBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := newAdminBot(api, adminService, adminIDs)
	b.api = api
	b.log.Info("admin bot authorized", "username", api.Self.UserName)
	return b, nil
}

func newAdminBot(s sender, adminService *service.AdminService, adminIDs []int64) *AdminBot {
	return &AdminBot{
		sender:       s,
		adminService: adminService,
		adminIDs:     adminIDs,
		stopCh:       make(chan struct{}),
		log:          logger.With("component", "admin_bot"),
	}
}

// Start слушает команды до Stop
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			// чужие сообщения молча игнорируем
			if !b.isAdmin(update.Message.From.ID) || !update.Message.IsCommand() {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop плавно останавливает бота
func (b *AdminBot) Stop() {
	b.stopOnce.Do(func() {
		b.log.Info("stopping admin bot...")
		close(b.stopCh)
		if b.api != nil {
			b.api.StopReceivingUpdates()
		}
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) isAdmin(tgID int64) bool {
	for _, id := range b.adminIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = service.WithActor(ctx, fmt.Sprintf("tg:%d", msg.From.ID))

	response := b.execute(ctx, msg.Command(), msg.CommandArguments())

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.sender.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

// execute выполняет команду и возвращает текст ответа
func (b *AdminBot) execute(ctx context.Context, command, args string) string {
	switch command {
	case "start", "help":
		return helpMessage
	case "stats":
		return b.handleStats(ctx)
	case "users":
		return b.handleUsers(args)
	case "withdrawals":
		return b.handleWithdrawals()
	case "approve":
		return b.handleResolve(ctx, args, domain.DecisionApprove)
	case "reject":
		return b.handleResolve(ctx, args, domain.DecisionReject)
	case "block":
		return b.handleStatus(ctx, args, domain.UserStatusBlocked)
	case "unblock":
		return b.handleStatus(ctx, args, domain.UserStatusActive)
	case "bonus":
		return b.handleBonus(ctx, args)
	case "settings":
		return b.handleSettings()
	case "set":
		return b.handleSet(ctx, args)
	default:
		return "❌ Неизвестная команда. Используйте /help для списка команд."
	}
}

const helpMessage = `<b>🤖 Команды администратора</b>

<b>📊 Статистика:</b>
/stats - Статистика платформы

<b>👤 Пользователи:</b>
/users [страница] - Все пользователи
/block &lt;user_id&gt; - Заблокировать
/unblock &lt;user_id&gt; - Разблокировать
/bonus &lt;user_id&gt; &lt;сумма&gt; - Начислить бонус

<b>💸 Выводы:</b>
/withdrawals - Ожидающие выводы
/approve &lt;id&gt; - Одобрить вывод
/reject &lt;id&gt; - Отклонить и вернуть средства

<b>⚙️ Настройки:</b>
/settings - Текущие настройки
/set &lt;поле&gt; &lt;значение&gt; - Изменить настройку
Поля: dailyAdLimit, rewardPerAd, minWithdrawal, appMaintenance, referralPercentage, adNetwork`

func (b *AdminBot) handleStats(ctx context.Context) string {
	stats, err := b.adminService.Stats(ctx)
	if err != nil {
		return errorReply(err)
	}

	return fmt.Sprintf(`<b>Статистика платформы</b>

<b>Пользователи:</b>
- Всего: %d
- Смотрели рекламу сегодня: %d
- Заблокировано: %d

<b>Реклама:</b>
- Всего просмотров: %d
- Начислено всего: ₹%s

<b>Выводы:</b>
- Ожидают: %d на ₹%s
- Из них сегодня: %d`,
		stats.TotalUsers, stats.ActiveToday, stats.BlockedUsers,
		stats.TotalAdsWatched, stats.TotalEarnings.StringFixed(2),
		stats.PendingTotal, stats.PendingAmount.StringFixed(2), stats.PendingToday)
}

const usersPerPage = 20

func (b *AdminBot) handleUsers(args string) string {
	page := 1
	if args != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && n > 0 {
			page = n
		}
	}

	users := b.adminService.ListUsers()
	if len(users) == 0 {
		return "Пользователи не найдены"
	}

	total := len(users)
	offset := (page - 1) * usersPerPage
	if offset >= total {
		return "Пользователи не найдены"
	}
	end := offset + usersPerPage
	if end > total {
		end = total
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Пользователи (стр. %d, всего: %d)</b>\n\n", page, total))
	for i, u := range users[offset:end] {
		status := ""
		if u.IsBlocked() {
			status = " 🚫"
		}
		sb.WriteString(fmt.Sprintf("%d. %s | %s | ₹%s | ads:%d%s\n<code>%s</code>\n",
			offset+i+1, html.EscapeString(u.Name), u.Phone, u.Balance.StringFixed(2), u.AdsWatched, status, u.ID))
	}

	totalPages := (total + usersPerPage - 1) / usersPerPage
	if totalPages > 1 && page < totalPages {
		sb.WriteString(fmt.Sprintf("\nСтраница %d/%d. Используйте /users %d", page, totalPages, page+1))
	}
	return sb.String()
}

func (b *AdminBot) handleWithdrawals() string {
	withdrawals := b.adminService.ListWithdrawals(true)
	if len(withdrawals) == 0 {
		return "Нет ожидающих выводов"
	}

	var sb strings.Builder
	sb.WriteString("<b>Ожидающие выводы</b>\n\n")
	for _, w := range withdrawals {
		sb.WriteString(fmt.Sprintf("<code>%s</code> | %s (%s)\n", w.ID, html.EscapeString(w.UserName), w.UserPhone))
		sb.WriteString(fmt.Sprintf("Сумма: ₹%s через %s\n", w.Amount.StringFixed(2), w.Method.Label()))
		sb.WriteString(fmt.Sprintf("Реквизиты: <code>%s</code>\n", html.EscapeString(w.AccountDetails)))
		sb.WriteString(fmt.Sprintf("%s\n\n", w.Date.Format("02.01.2006 15:04")))
	}
	sb.WriteString("/approve &lt;id&gt; — одобрить\n/reject &lt;id&gt; — отклонить")
	return sb.String()
}

func (b *AdminBot) handleResolve(ctx context.Context, args string, decision domain.Decision) string {
	id := strings.TrimSpace(args)
	if id == "" {
		return fmt.Sprintf("Использование: /%s &lt;id&gt;", commandFor(decision))
	}

	w, err := b.adminService.ResolveWithdrawal(ctx, id, decision)
	if err != nil {
		return errorReply(err)
	}
	if decision == domain.DecisionReject {
		return fmt.Sprintf("Вывод <code>%s</code> отклонён. ₹%s возвращены пользователю.", w.ID, w.Amount.StringFixed(2))
	}
	return fmt.Sprintf("Вывод <code>%s</code> одобрен. ₹%s через %s.", w.ID, w.Amount.StringFixed(2), w.Method.Label())
}

func commandFor(d domain.Decision) string {
	if d == domain.DecisionReject {
		return "reject"
	}
	return "approve"
}

func (b *AdminBot) handleStatus(ctx context.Context, args string, status domain.UserStatus) string {
	id := strings.TrimSpace(args)
	if id == "" {
		if status == domain.UserStatusBlocked {
			return "Использование: /block &lt;user_id&gt;"
		}
		return "Использование: /unblock &lt;user_id&gt;"
	}

	u, err := b.adminService.SetUserStatus(ctx, id, status)
	if err != nil {
		return errorReply(err)
	}
	if status == domain.UserStatusBlocked {
		return fmt.Sprintf("Пользователь %s заблокирован", html.EscapeString(u.Name))
	}
	return fmt.Sprintf("Пользователь %s разблокирован", html.EscapeString(u.Name))
}

func (b *AdminBot) handleBonus(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "Использование: /bonus &lt;user_id&gt; &lt;сумма&gt;"
	}

	amount, err := decimal.NewFromString(parts[1])
	if err != nil {
		return "Неверная сумма"
	}

	u, err := b.adminService.CreditBonus(ctx, parts[0], amount)
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("Начислено ₹%s пользователю %s. Баланс: ₹%s",
		amount.StringFixed(2), html.EscapeString(u.Name), u.Balance.StringFixed(2))
}

func (b *AdminBot) handleSettings() string {
	s := b.adminService.Settings()
	maintenance := "выкл"
	if s.AppMaintenance {
		maintenance = "вкл"
	}
	return fmt.Sprintf(`<b>Настройки</b>

dailyAdLimit: %d
rewardPerAd: ₹%s
minWithdrawal: ₹%s
appMaintenance: %s
referralPercentage: %s%%
adNetwork: %s`,
		s.DailyAdLimit, s.RewardPerAd.String(), s.MinWithdrawal.String(),
		maintenance, s.ReferralPercentage.String(), html.EscapeString(s.AdNetwork))
}

var errUnknownSetting = errors.New("неизвестное поле")

// parseSetting собирает patch из пары поле/значение
func parseSetting(field, value string) (domain.SettingsPatch, error) {
	var p domain.SettingsPatch
	switch field {
	case "dailyAdLimit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return p, err
		}
		p.DailyAdLimit = &n
	case "rewardPerAd", "minWithdrawal", "referralPercentage":
		d, err := decimal.NewFromString(value)
		if err != nil {
			return p, err
		}
		switch field {
		case "rewardPerAd":
			p.RewardPerAd = &d
		case "minWithdrawal":
			p.MinWithdrawal = &d
		default:
			p.ReferralPercentage = &d
		}
	case "appMaintenance":
		v, err := strconv.ParseBool(value)
		if err != nil {
			switch strings.ToLower(value) {
			case "on", "вкл":
				v = true
			case "off", "выкл":
				v = false
			default:
				return p, err
			}
		}
		p.AppMaintenance = &v
	case "adNetwork":
		p.AdNetwork = &value
	default:
		return p, errUnknownSetting
	}
	return p, nil
}

func (b *AdminBot) handleSet(ctx context.Context, args string) string {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return "Использование: /set &lt;поле&gt; &lt;значение&gt;"
	}

	patch, err := parseSetting(parts[0], strings.TrimSpace(parts[1]))
	if err != nil {
		return errorReply(err)
	}
	if _, err := b.adminService.UpdateSettings(ctx, patch); err != nil {
		return errorReply(err)
	}
	return "✅ Настройки обновлены\n\n" + b.handleSettings()
}

// NotifyAdmins отправляет сообщение всем админам
func (b *AdminBot) NotifyAdmins(message string) {
	for _, adminID := range b.adminIDs {
		msg := tgbotapi.NewMessage(adminID, message)
		msg.ParseMode = "HTML"
		if _, err := b.sender.Send(msg); err != nil {
			b.log.Error("failed to notify admin", "admin_id", adminID, "error", err)
		}
	}
}

// NotifyAdminsNewWithdrawal уведомляет всех админов о новой заявке на вывод
func (b *AdminBot) NotifyAdminsNewWithdrawal(n service.WithdrawalNotification) {
	w := n.Withdrawal
	b.log.Info("new withdrawal notification", "withdrawal_id", w.ID, "admin_count", len(b.adminIDs))

	b.NotifyAdmins(fmt.Sprintf(`<b>Новый запрос на вывод!</b>

Пользователь: %s (%s)
Сумма: ₹%s через %s
Реквизиты: <code>%s</code>
Остаток на балансе: ₹%s

ID: <code>%s</code>

/approve %s - одобрить
/reject %s - отклонить`,
		html.EscapeString(n.UserName), n.UserPhone,
		w.Amount.StringFixed(2), w.Method.Label(), html.EscapeString(w.AccountDetails),
		n.Balance.StringFixed(2), w.ID, w.ID, w.ID))
}

// NotifyAdminsPending напоминание о заявках, ждущих решения
func (b *AdminBot) NotifyAdminsPending(r service.PendingReminder) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>⏰ %d заявок ждут решения</b>\n", len(r.Withdrawals)))
	sb.WriteString(fmt.Sprintf("Самая старая: %s\n\n", r.OldestAge.Truncate(time.Minute)))
	for _, w := range r.Withdrawals {
		sb.WriteString(fmt.Sprintf("<code>%s</code> ₹%s через %s\n", w.ID, w.Amount.StringFixed(2), w.Method.Label()))
	}
	sb.WriteString("\n/withdrawals - список")
	b.NotifyAdmins(sb.String())
}

// ответы уходят в HTML режиме, текст ошибки может содержать ввод админа
func errorReply(err error) string {
	return "Ошибка: " + html.EscapeString(err.Error())
}
