package telegram

// User-facing texts. The bot speaks Ukrainian to match the expense
// categories it writes to the sheet.
const (
	msgStart = "Привіт! Я записую ваші витрати в Google Таблицю.\n\n" +
		"Надішліть текст на кшталт «Купив продукти за 250 грн» або " +
		"голосове повідомлення, і я запропоную суму та категорію на підтвердження.\n\n" +
		"Команди: /help /summary"

	msgHelp = "Як користуватися:\n" +
		"• Напишіть витрату текстом: «Кава 85 грн»\n" +
		"• Або надішліть голосове повідомлення\n" +
		"• Перевірте суму й категорію, натисніть ✅ Підтвердити\n" +
		"• Кнопками можна змінити категорію або суму\n\n" +
		"/summary — останні записані витрати"

	msgSaved             = "✅ Витрату записано в таблицю."
	msgSaveFailed        = "⚠️ Не вдалося записати витрату в таблицю. Спробуйте підтвердити ще раз."
	msgCancelled         = "❌ Скасовано."
	msgSessionNotFound   = "Не вдалося знайти цю витрату. Надішліть її ще раз."
	msgAmountRequired    = "Сума не розпізнана. Натисніть «💱 Сума» і введіть її вручну."
	msgPromptAmount      = "Введіть суму, наприклад 123.45:"
	msgInvalidAmount     = "Це не схоже на суму. Введіть додатне число, наприклад 123.45:"
	msgChooseCategory    = "Оберіть категорію:"
	msgExtractDegraded   = "Не вдалося повністю розпізнати витрату. Перевірте суму й категорію кнопками нижче."
	msgVoiceFetchFailed  = "Не вдалося отримати голосове повідомлення. Спробуйте ще раз або напишіть текстом."
	msgTranscribeFailed  = "Не вдалося розпізнати голосове повідомлення. Напишіть витрату текстом."
	msgSummaryEmpty      = "Поки що немає записаних витрат."
	msgSummaryFailed     = "Не вдалося завантажити витрати. Спробуйте пізніше."
	msgUnknownCommand    = "Невідома команда. Використайте /help для списку команд."
	msgUnsupportedUpdate = "Я розумію лише текстові та голосові повідомлення."
)
