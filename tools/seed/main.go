// seed fills a running CitaPlan stack with demo data through the gateway:
// specialties, doctors with weekly windows, a spread of appointments over the
// next days and a handful of waitlist entries. It signs its own staff token
// with JWT_SECRET, so it works against a dev gateway out of the box.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/citaplan/citaplan/libs/auth"
)

var specialties = []struct {
	Code        string
	Name        string
	HighPrivacy bool
}{
	{"general", "Medicina General", false},
	{"cardiology", "Cardiología", false},
	{"dermatology", "Dermatología", false},
	{"psychiatry", "Psiquiatría", true},
	{"psychology", "Psicología", true},
	{"fertility", "Fertilidad", true},
}

func main() {
	var (
		baseURL  = flag.String("base-url", getenv("BASE_URL", "http://localhost:8080"), "gateway base url")
		secret   = flag.String("jwt-secret", getenv("JWT_SECRET", "dev-secret"), "gateway HS256 secret")
		doctors  = flag.Int("doctors", 6, "doctors to create")
		appts    = flag.Int("appointments", 30, "appointments to book")
		waitlist = flag.Int("waitlist", 8, "waitlist entries to create")
		seed     = flag.Uint64("seed", 0, "faker seed (0 = random)")
	)
	flag.Parse()

	faker := gofakeit.New(*seed)

	token, err := auth.SignHS256(auth.Claims{
		Sub:      "seed-tool",
		ClinicID: "clinic-demo",
		Role:     "admin",
		Iat:      time.Now().Unix(),
		Exp:      time.Now().Add(1 * time.Hour).Unix(),
	}, *secret)
	if err != nil {
		fatal("sign token: " + err.Error())
	}

	c := &client{base: strings.TrimRight(*baseURL, "/"), token: token}

	for _, sp := range specialties {
		c.put("/api/v1/directory/specialties", map[string]any{
			"code":         sp.Code,
			"name":         sp.Name,
			"high_privacy": sp.HighPrivacy,
		})
	}
	fmt.Printf("specialties: %d\n", len(specialties))

	doctorIDs := make([]string, 0, *doctors)
	doctorNames := make(map[string]string, *doctors)
	for i := 0; i < *doctors; i++ {
		sp := specialties[i%len(specialties)]
		name := "Dr. " + faker.Name()
		var created struct {
			ID string `json:"id"`
		}
		c.postInto("/api/v1/directory/doctors", map[string]any{
			"name":        name,
			"specialty":   sp.Code,
			"location_id": fmt.Sprintf("room-%d", i%3+1),
		}, &created)
		if created.ID == "" {
			fatal("doctor creation returned no id")
		}
		doctorIDs = append(doctorIDs, created.ID)
		doctorNames[created.ID] = name

		// Mon-Fri mornings, three afternoons.
		windows := make([]map[string]any, 0, 8)
		for day := 1; day <= 5; day++ {
			windows = append(windows, map[string]any{"day_of_week": day, "start": "09:00", "end": "13:00"})
			if day%2 == 1 {
				windows = append(windows, map[string]any{"day_of_week": day, "start": "15:00", "end": "18:00"})
			}
		}
		c.put("/api/v1/doctors/"+created.ID+"/windows", windows)
	}
	fmt.Printf("doctors: %d\n", len(doctorIDs))

	booked := 0
	for i := 0; i < *appts; i++ {
		doctorID := doctorIDs[faker.IntRange(0, len(doctorIDs)-1)]
		sp := specialties[faker.IntRange(0, len(specialties)-1)]
		start := nextWeekdaySlot(faker, i)
		status, _ := c.post("/api/v1/appointments", map[string]any{
			"doctor_id":        doctorID,
			"doctor_name":      doctorNames[doctorID],
			"patient_name":     faker.Name(),
			"patient_email":    faker.Email(),
			"patient_phone":    faker.Phone(),
			"specialty":        sp.Code,
			"reason":           faker.Sentence(4),
			"start":            start.Format(time.RFC3339),
			"duration_minutes": 30,
		})
		// 409s are expected when the faker lands on the same slot twice.
		if status == http.StatusCreated {
			booked++
		}
	}
	fmt.Printf("appointments: %d booked of %d attempted\n", booked, *appts)

	for i := 0; i < *waitlist; i++ {
		doctorID := doctorIDs[faker.IntRange(0, len(doctorIDs)-1)]
		priority := "normal"
		if i%4 == 0 {
			priority = "urgent"
		}
		c.post("/api/v1/waitlist", map[string]any{
			"doctor_id":                  doctorID,
			"patient_name":               faker.Name(),
			"patient_email":              faker.Email(),
			"patient_phone":              faker.Phone(),
			"estimated_duration_minutes": 30,
			"preferred_days":             []int{1, 2, 3, 4, 5},
			"priority":                   priority,
		})
	}
	fmt.Printf("waitlist: %d entries\n", *waitlist)
}

// nextWeekdaySlot spreads appointments over the coming two weeks of seeded
// morning windows, stepping slots deterministically so collisions stay rare.
func nextWeekdaySlot(faker *gofakeit.Faker, i int) time.Time {
	day := time.Now().AddDate(0, 0, 1+i%10)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	slot := faker.IntRange(0, 7) // 09:00-13:00 in 30min steps
	return time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local).
		Add(time.Duration(slot) * 30 * time.Minute)
}

type client struct {
	base  string
	token string
}

func (c *client) post(path string, body any) (int, []byte) {
	return c.do(http.MethodPost, path, body)
}

func (c *client) put(path string, body any) {
	status, raw := c.do(http.MethodPut, path, body)
	if status < 200 || status >= 300 {
		fatal(fmt.Sprintf("PUT %s: status=%d body=%s", path, status, raw))
	}
}

func (c *client) postInto(path string, body any, out any) {
	status, raw := c.do(http.MethodPost, path, body)
	if status < 200 || status >= 300 {
		fatal(fmt.Sprintf("POST %s: status=%d body=%s", path, status, raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		fatal(fmt.Sprintf("POST %s: decode response: %v", path, err))
	}
}

func (c *client) do(method, path string, body any) (int, []byte) {
	raw, err := json.Marshal(body)
	if err != nil {
		fatal(err.Error())
	}
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(raw))
	if err != nil {
		fatal(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
