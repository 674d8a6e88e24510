// Package messages содержит тексты бота на узбекском языке.
// Все сообщения форматируются в HTML (parse_mode=HTML).
package messages

import (
	"fmt"
	"strings"

	"github.com/uzfiles/approvalbot/internal/domain/model"
)

// Подписи кнопок reply-клавиатуры.
const (
	BtnUpload       = "📤 Yuklash"
	BtnUploadNew    = "📤 Yangi"
	BtnFiles        = "📁 Fayllar"
	BtnFilesMy      = "📁 Fayllarim"
	BtnHelp         = "💡 Yordam"
	BtnRefresh      = "🔄 Yangilash"
	BtnHome         = "🏠 Bosh"
	BtnHomePage     = "🏠 Bosh sahifa"
	BtnCancel       = "❌ Bekor qilish"
	BtnRegister     = "🏠 Ro'yxatdan o'tish"
	BtnShareContact = "📱 Telefon raqamini ulashish"
	BtnSkipRegion   = "⏭️ O'tkazib yuborish"
)

// Сообщения регистрации.
const (
	WelcomeNew = "<b>Xush kelibsiz!</b> 👋\n\nBoshlash uchun ro'yxatdan o'tishingiz kerak. Iltimos, quyidagi tugma orqali telefon raqamingizni ulashing."

	AskFullName = "<b>👤 To'liq ismingizni kiriting</b>\n\nIltimos, to'liq ism va familiyangizni kiriting:\n\n<i>Masalan: Halimjon Hikmatjonov</i>"

	FullNameTooShort = "<b>⚠️ Xatolik!</b>\n\nIltimos, to'liq ism va familiyangizni kiriting.\n\n<i>Masalan: Halimjon Hikmatjonov</i>"

	AskRegion = "<b>📍 Hududingizni tanlang</b>\n\nIltimos, qaysi hududda yashashingizni tanlang yoki o'tkazib yuboring:"

	ContactUnreadable = "<b>⚠️ Xatolik!</b>\n\nKechirasiz, telefon raqamingizni ololmadim. Iltimos, qaytadan urinib ko'ring."

	RegistrationExpired = "<b>⚠️ Xatolik!</b>\n\nRo'yxatdan o'tish vaqti tugagan. Iltimos, /start buyrug'i bilan qaytadan boshlang."

	NotRegistered = "<b>❌ Xatolik!</b>\n\nSiz hali ro'yxatdan o'tmagansiz. Iltimos, avval /start buyrug'ini yuboring va ro'yxatdan o'ting."

	RegisterFirst = "<b>⚠️ Xatolik!</b>\n\nIltimos, avval ro'yxatdan o'ting."
)

// Сообщения сценария загрузки.
const (
	AskFileName = "<b>📤 Fayl yuklash</b>\n\nIltimos, faylingiz uchun nom yoki tavsif kiriting:\n\n<i>Yuklash jarayonini bekor qilish uchun tugmani bosing.</i>"

	FileNameInvalid = "<b>⚠️ Xatolik!</b>\n\nIltimos, faylingiz uchun to'g'ri nom kiriting yoki bekor qilish tugmasini bosing."

	AskFile = "<b>✅ Ajoyib!</b>\n\nEndi iltimos faylingizni yuklang (hujjat, rasm, video, audio va boshqalar):\n\n<i>Yuklash jarayonini bekor qilish uchun tugmani bosing.</i>"

	ExpectedFile = "<b>⚠️ Xatolik!</b>\n\nIltimos, to'g'ri fayl yuklang (hujjat, rasm, video, audio va boshqalar) yoki bekor qilish tugmasini bosing."

	Processing = "<b>⏳ Kutib turing...</b>\n\nFaylingiz qayta ishlanmoqda..."

	UploadCancelled = "<b>❌ Bekor qilindi</b>\n\nFayl yuklash bekor qilindi. Quyidagi tugmalardan birini tanlang:"

	NothingToCancel = "<b>ℹ️ Ma'lumot</b>\n\nBekor qilinadigan faol yuklash yo'q. Quyidagi tugmalardan birini tanlang:"

	ResolveFailed = "<b>❌ Xatolik yuz berdi!</b>\n\nFayl ma'lumotlarini olishda xatolik yuz berdi. Fayl juda katta bo'lishi mumkin yoki Telegram serverida muammo bor.\n\nIltimos, kichikroq fayl yuboring yoki keyinroq qaytadan urinib ko'ring."

	SaveFailed = "<b>❌ Xatolik yuz berdi!</b>\n\nKechirasiz, fayl ma'lumotlarini saqlashda xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring yoki qo'llab-quvvatlash bilan bog'laning."
)

// HelpText — справка по командам бота.
const HelpText = "🤖 <b>Mavjud buyruqlar:</b>\n\n" +
	"📤 <b>Fayl yuklash</b> - Admin ko'rib chiqishi uchun fayl yuklash\n" +
	"📁 <b>Fayllarim</b> - Yuklangan fayllar holati\n" +
	"💡 <b>Yordam</b> - Ushbu yordam xabarini ko'rsatish\n" +
	"🔄 <b>Yangilash</b> - Botni qayta ishga tushirish\n\n" +
	"<b>📤 Yuklash jarayoni:</b>\n" +
	"1. 📤 Fayl yuklash tugmasini bosing\n" +
	"2. Faylingiz uchun nom/tavsif bering\n" +
	"3. Faylingizni yuklang (hujjat, rasm, video, audio, ovozli xabar)\n" +
	"4. Fayl adminlarga ko'rib chiqish uchun yuboriladi\n\n" +
	"<b>📁 Qo'llab-quvvatlanadigan fayl turlari:</b>\n" +
	"• Hujjatlar (PDF, DOC va boshqalar)\n" +
	"• Rasmlar (JPG, PNG va boshqalar)\n" +
	"• Videolar (MP4, AVI va boshqalar)\n" +
	"• Audio fayllar (MP3, WAV va boshqalar)\n" +
	"• Ovozli xabarlar"

// WelcomeBack приветствует зарегистрированного пользователя.
func WelcomeBack(name string) string {
	return fmt.Sprintf("<b>Salom %s!</b> Qaytganingizdan xursandmiz! 🎉\n\nQuyidagi tugmalardan birini tanlang:", name)
}

// AccountLinked — телефон уже был в базе, привязали telegram_id.
func AccountLinked(name string) string {
	return fmt.Sprintf("<b>🎉 Xush kelibsiz, %s!</b>\n\nHisobingiz Telegram bilan bog'landi.", name)
}

// RegistrationDone — регистрация завершена.
func RegistrationDone(name, phone, region string) string {
	regionText := ""
	if region != "" {
		regionText = fmt.Sprintf("\n<b>Hudud:</b> %s", region)
	}
	return fmt.Sprintf("<b>🎉 Ajoyib!</b>\n\n<b>Ro'yxatdan o'tish muvaffaqiyatli yakunlandi!</b>\n\n<b>Ism:</b> %s%s\n<b>Telefon:</b> %s\n\nXizmatimizga xush kelibsiz!\n\nQuyidagi tugmalardan birini tanlang:", name, regionText, phone)
}

// FileTooLarge — превышен лимит размера файла.
func FileTooLarge(size, limit int64) string {
	return fmt.Sprintf("<b>❌ Fayl juda katta!</b>\n\nFayl hajmi: %s\nMaksimal ruxsat etilgan hajm: %s\n\nIltimos, kichikroq fayl yuboring.",
		FormatFileSize(size), FormatFileSize(limit))
}

// UploadDone — файл принят и сохранён.
func UploadDone(f *model.UploadedFile, userName string) string {
	return fmt.Sprintf("<b>📁 Fayl muvaffaqiyatli yuklandi!</b>\n\n"+
		"<b>Nomi:</b> %s\n"+
		"<b>Turi:</b> %s\n"+
		"<b>Fayl:</b> %s\n"+
		"<b>Hajmi:</b> %s\n"+
		"<b>Foydalanuvchi:</b> %s\n"+
		"<b>Yuklash ID:</b> #%d\n\n"+
		"✅ Faylingiz Telegramda saqlandi va adminlarga ko'rib chiqish uchun yuborildi.",
		f.Name, string(f.FileType), f.OriginalFilename, FormatFileSize(f.FileSize), userName, f.ID)
}

// StatusLabel возвращает узбекскую подпись статуса для уведомлений.
func StatusLabel(status model.FileStatus) string {
	switch status {
	case model.StatusAccepted:
		return "✅ <b>Tasdiqlandi</b>"
	case model.StatusRejected:
		return "❌ <b>Rad etildi</b>"
	case model.StatusPending:
		return "⏳ <b>Jarayonda</b>"
	case model.StatusWaiting:
		return "🏢 <b>Bino inshoat bo'limiga yuborildi</b>"
	default:
		return "📄 <b>Yangilandi</b>"
	}
}

// StatusChanged — уведомление владельцу файла о смене статуса.
func StatusChanged(f *model.UploadedFile, newStatus model.FileStatus, adminNotes string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>📁 Fayl holati yangilandi!</b>\n\n")
	fmt.Fprintf(&b, "<b>Fayl nomi:</b> %s\n", f.Name)
	fmt.Fprintf(&b, "<b>Asl fayl:</b> %s\n", f.OriginalFilename)
	fmt.Fprintf(&b, "<b>Yangi holat:</b> %s\n", StatusLabel(newStatus))
	fmt.Fprintf(&b, "<b>Fayl ID:</b> #%d", f.ID)
	if adminNotes != "" {
		fmt.Fprintf(&b, "\n\n<b>💬 Admin izohi:</b>\n%s", adminNotes)
	}
	b.WriteString("\n\n<i>Barcha fayllaringizni ko'rish uchun /files buyrug'ini yuboring.</i>")
	return b.String()
}

// FilesEmpty — у пользователя пока нет файлов.
const FilesEmpty = "<b>📁 Fayllar</b>\n\nSiz hali hech qanday fayl yuklamagansiz.\n\nQuyidagi tugmalardan birini tanlang:"

// FilesList — список последних файлов пользователя.
func FilesList(files []*model.UploadedFile, total int) string {
	var b strings.Builder
	b.WriteString("<b>📁 Sizning fayllaringiz</b>\n\n")

	for _, f := range files {
		icon, label := statusIconLabel(f.Status)
		fmt.Fprintf(&b, "%s <b>%s</b>\n", icon, f.Name)
		fmt.Fprintf(&b, "   📄 %s\n", f.OriginalFilename)
		fmt.Fprintf(&b, "   📊 Holat: %s\n", label)
		fmt.Fprintf(&b, "   📅 %s\n", f.CreatedAt.Format("02.01.2006 15:04"))
		if f.AdminNotes != nil && *f.AdminNotes != "" {
			fmt.Fprintf(&b, "   💬 Izoh: %s\n", *f.AdminNotes)
		}
		b.WriteString("\n")
	}

	if len(files) >= 10 && total > len(files) {
		fmt.Fprintf(&b, "<i>So'nggi 10 ta fayl ko'rsatildi. Jami: %d ta fayl</i>\n\n", total)
	}
	return b.String()
}

func statusIconLabel(status model.FileStatus) (string, string) {
	switch status {
	case model.StatusAccepted:
		return "✅", "Tasdiqlandi"
	case model.StatusRejected:
		return "❌", "Rad etildi"
	case model.StatusPending:
		return "⏳", "Jarayonda"
	case model.StatusWaiting:
		return "🏢", "Kutish"
	default:
		return "📄", "Noma'lum"
	}
}

// FormatFileSize форматирует размер файла для пользователя.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.2f GB", float64(bytes)/(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
