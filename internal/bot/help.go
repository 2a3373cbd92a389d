package bot

import (
	"fmt"
	"strings"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/streak"
)

// HelpText собирает описание правил и команд из действующей политики наград.
func HelpText(policy streak.Policy, period common.Period, shopURL string) string {
	var sb strings.Builder
	sb.WriteString("📖 Как получить очки:\n")
	sb.WriteString(fmt.Sprintf("• %s за каждое сообщение в чате\n", common.FormatBalance(policy.MessagePoints)))
	if policy.ReactionPoints > 0 {
		sb.WriteString(fmt.Sprintf("• %s за реакцию\n", common.FormatBalance(policy.ReactionPoints)))
	}
	sb.WriteString(fmt.Sprintf("• %s за первое сообщение за день\n", common.FormatBalance(policy.DailyBonus)))
	for _, tier := range policy.Tiers {
		line := fmt.Sprintf("• %s за серию %d %s подряд",
			common.FormatBalance(tier.Bonus), tier.Streak, common.PluralizeDays(tier.Streak))
		if tier.Reset {
			line += ", после чего серия начинается заново"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("Пропустили день — серия начинается с 1.\n")
	sb.WriteString(fmt.Sprintf("Счётчик сообщений обнуляется каждый %s.\n", periodWord(period)))

	sb.WriteString("\n🛠 Команды:\n")
	sb.WriteString("!баланс — ваши очки (ответом на сообщение — чужие)\n")
	sb.WriteString("!подарить N — ответом на сообщение получателя\n")
	sb.WriteString("!топ [очки|сообщения|серия] — рейтинг\n")
	sb.WriteString("!серия — ваша серия дней\n")
	sb.WriteString("!магазин, !купить id — обмен очков\n")
	sb.WriteString("!начислить N, !списать N — для администраторов\n")
	sb.WriteString("/login пароль — вход администратора (в личке)")
	if shopURL != "" {
		sb.WriteString("\n\n🛒 Магазин: " + shopURL)
	}
	return sb.String()
}

func periodWord(p common.Period) string {
	if p == common.PeriodMonthly {
		return "месяц"
	}
	return "понедельник"
}
