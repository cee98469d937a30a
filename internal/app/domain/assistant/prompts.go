package assistant

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/city-explorer-api/internal/app/models"
)

const (
	instructionsGeneral = `Sen Smart City Explorer uygulamasının samimi ve arkadaş canlısı AI asistanısın. Kullanıcıyla sıcak, doğal ve dostça konuş. Sanki bir arkadaşınla sohbet ediyormuş gibi rahat ve içten ol. Türkçe konuş ve markdown formatı kullanma (yıldız, kalın yazı gibi). Pratik ve faydalı bilgiler ver.`

	instructionsFormatting = `ÖNEMLİ: Yanıtlarında asla markdown formatı kullanma. Yıldız (*), kalın yazı (**) veya özel formatlar yok. Sadece düz, doğal Türkçe metin kullan.`

	instructionsPersonality = `Kişilik özelliklerin:
- Samimi ve sıcakkanlı
- Arkadaş canlısı ve rahat
- Yardımsever ve anlayışlı
- Heyecanlı ama abartısız
- Pratik önerilerde bulunan
- Konuma ve hava durumuna özel tavsiyelerde bulunan`
)

const categoryPromptTemplate = `Kullanıcının mesajından mekan kategorisi çıkar.

Kullanıcı Mesajı: "%s"

KATEGORİLER:
- atm: ATM, banka, para çekme
- cafe: kafe, kahve, coffee
- restaurant: restoran, yemek, lokanta
- pharmacy: eczane, ilaç
- hospital: hastane, sağlık
- market: market, süpermarket, bakkal
- park: park, yeşil alan
- museum: müze, sanat galerisi

Eğer mesajda bir kategori varsa, kategori kodunu döndür.
Eğer yoksa "none" döndür.

SADECE kategori kodunu yaz (atm, cafe, restaurant, vb.) veya "none"`

func buildCategoryPrompt(message string) string {
	return fmt.Sprintf(categoryPromptTemplate, message)
}

const routeCandidateLimit = 15

func buildRoutePrompt(message string, places []models.Place) string {
	if len(places) > routeCandidateLimit {
		places = places[:routeCandidateLimit]
	}

	lines := make([]string, 0, len(places))
	for i, p := range places {
		distance := "?"
		if p.Distance != nil {
			distance = fmt.Sprintf("%.2f", *p.Distance)
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s (%s km)", i, p.Name, p.Category, distance))
	}

	return fmt.Sprintf(`Sen bir navigasyon asistanısın. Kullanıcının gitmek istediği yeri belirle.

Kullanıcı Mesajı: "%s"

Yakındaki Mekanlar:
%s

ROTA KELİMELERİ: git, yol, rota, nasıl giderim, nerede, yolculuk, ulaşım, tarif

Görev:
1. Kullanıcı bir yere gitmek/yol tarifi istiyor mu?
2. Eğer EVET ise, hangi mekana gitmek istiyor? (sadece 1 mekan seç - en uygun olanı)
3. Kategori belirtmişse (ATM, kafe, restoran) o kategoriden EN YAKIN olanı seç

Örnekler:
- "En yakın ATM'ye git" → ATM kategorisinden en yakın olanı seç
- "Starbucks'a nasıl giderim" → Starbucks'ı seç
- "Moda Parkı'na yol tarifi" → Moda Parkı'nı seç
- "Yakınımda ne var?" → Rota değil, sadece bilgi

SADECE JSON formatında yanıt ver:
{
  "shouldCreateRoute": true,
  "placeIndices": [2],
  "explanation": "Seni en yakın ATM'ye götürüyorum. 0.3 km mesafede, yaklaşık 4 dakika yürüyüş."
}

Eğer rota isteği YOKSA:
{
  "shouldCreateRoute": false,
  "placeIndices": [],
  "explanation": ""
}`, message, strings.Join(lines, "\n"))
}

func timeOfDay(hour int) string {
	switch {
	case hour < 6:
		return "gece"
	case hour < 12:
		return "sabah"
	case hour < 18:
		return "öğleden sonra"
	case hour < 22:
		return "akşam"
	default:
		return "gece"
	}
}

var turkishDays = map[time.Weekday]string{
	time.Monday:    "Pazartesi",
	time.Tuesday:   "Salı",
	time.Wednesday: "Çarşamba",
	time.Thursday:  "Perşembe",
	time.Friday:    "Cuma",
	time.Saturday:  "Cumartesi",
	time.Sunday:    "Pazar",
}

// buildChatPrompt assembles the system instructions, the current context
// blocks and the response rules around the user message. Blocks whose
// data is missing are omitted.
func buildChatPrompt(message string, now time.Time, weather *models.WeatherData, locationName string, location *models.Location, nearby []models.Place) string {
	var contextParts []string

	contextParts = append(contextParts, fmt.Sprintf(`
Zaman Bilgileri:
- Saat: %02d:%02d
- Gün: %s
- Zaman Dilimi: %s
- Tarih: %s`,
		now.Hour(), now.Minute(), turkishDays[now.Weekday()], timeOfDay(now.Hour()), now.Format("02.01.2006")))

	if weather != nil {
		contextParts = append(contextParts, fmt.Sprintf(`
Hava Durumu Bilgileri:
- Sıcaklık: %d°C (Hissedilen: %d°C)
- Durum: %s
- Nem: %%%d
- Rüzgar Hızı: %v m/s
- Bulutluluk: %%%d`,
			weather.Temp, weather.FeelsLike, weather.Description, weather.Humidity, weather.WindSpeed, weather.Clouds))
	}

	if location != nil {
		contextParts = append(contextParts, fmt.Sprintf(`
Konum Bilgileri:
- Konum Adı: %s
- Koordinatlar: %.4f, %.4f`,
			locationName, location.Latitude, location.Longitude))
	}

	if len(nearby) > 0 {
		contextParts = append(contextParts, nearbyContext(nearby))
	}

	header := ""
	if len(contextParts) > 0 {
		header = "=== MEVCUT DURUM VE VERİLER ==="
	}

	return fmt.Sprintf(`%s

%s

%s

%s
%s

=== KULLANICI SORUSU ===
%s

=== YANIT KURALLARI ===
1. Samimi ve arkadaş canlısı ol, sanki bir arkadaşınla konuşuyormuş gibi
2. Hava durumu, konum ve ÖZELLIKLE SAAT bilgisini kullanarak kişiselleştirilmiş önerilerde bulun
3. Saate göre uygun öneriler yap (sabah: kahvaltı, öğle: öğle yemeği, akşam: akşam yemeği/eğlence)
4. Markdown formatı kullanma (yıldız, kalın yazı yok)
5. 3-4 cümleyle net ve faydalı bilgi ver
6. Yakındaki mekanlardan somut örnekler ver
7. Hava durumu ve saate göre pratik tavsiyeler sun
8. Eğer kullanıcı "rota", "gezi planı", "tur" gibi kelimeler kullanıyorsa, rota oluşturma özelliğinden bahset

NOT: Rota oluşturma istekleri otomatik olarak algılanır ve haritada gösterilir.

Şimdi kullanıcıya samimi ve yardımcı bir şekilde, SAATE UYGUN önerilerde bulunarak yanıt ver:`,
		instructionsGeneral, instructionsPersonality, instructionsFormatting,
		header, strings.Join(contextParts, "\n"), message)
}

// nearbyContext lists the distinct categories and the closest 8 places
// sorted by distance ascending.
func nearbyContext(nearby []models.Place) string {
	sorted := make([]models.Place, len(nearby))
	copy(sorted, nearby)
	sort.SliceStable(sorted, func(i, j int) bool {
		return placeDistance(sorted[i]) < placeDistance(sorted[j])
	})

	seen := map[string]bool{}
	categories := []string{}
	for _, p := range sorted {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}

	top := sorted
	if len(top) > 8 {
		top = top[:8]
	}
	lines := make([]string, 0, len(top))
	for i, p := range top {
		distance := "mesafe bilinmiyor"
		if p.Distance != nil {
			distance = fmt.Sprintf("%.2f km", *p.Distance)
		}
		lines = append(lines, fmt.Sprintf("  %d. %s - %s (%s)", i+1, p.Name, p.Category, distance))
	}

	return fmt.Sprintf(`
Yakındaki Mekanlar (Toplam %d adet):
Kategoriler: %s

En yakın 8 mekan (mesafeye göre sıralı):
%s`, len(nearby), strings.Join(categories, ", "), strings.Join(lines, "\n"))
}

func placeDistance(p models.Place) float64 {
	if p.Distance == nil {
		return 999
	}
	return *p.Distance
}
