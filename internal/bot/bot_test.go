package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/hermes"
	"github.com/MikeSquared-Agency/aktivasi/internal/lock"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTable struct {
	mu      sync.Mutex
	tables  map[string][][]string
	readErr error
	ranges  []string
}

func newFakeTable() *fakeTable {
	return &fakeTable{tables: map[string][][]string{
		"USERS": {
			{"HANDLE", "NAMA", "ROLE", "STATUS"},
			{"budi", "Budi", "TEKNISI", "AKTIF"},
			{"@siti", "Siti", "ADMIN", "aktif"},
			{"joko", "Joko", "TEKNISI", "NONAKTIF"},
			{"U999", "Rina", "TEKNISI", "AKTIF"},
		},
	}}
}

func (f *fakeTable) ReadAll(_ context.Context, table string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([][]string, len(f.tables[table]))
	copy(out, f.tables[table])
	return out, nil
}

func (f *fakeTable) Append(_ context.Context, table string, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table] = append(f.tables[table], row)
	return nil
}

func (f *fakeTable) ReplaceRange(_ context.Context, table, rangeSpec string, rows [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges = append(f.ranges, rangeSpec)
	f.tables[table] = rows
	return nil
}

func (f *fakeTable) rows(table string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[table]
}

type published struct {
	subject string
	data    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(subject string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{subject, data})
	return nil
}

type fakeReplier struct {
	mu      sync.Mutex
	replies []string
	threads []string
}

func (f *fakeReplier) PostMessage(_ context.Context, channel, threadTS, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, text)
	f.threads = append(f.threads, channel+"/"+threadTS)
	return nil
}

var wib = period.LoadLocation(period.DefaultTimezone)

var today = time.Date(2026, time.October, 14, 10, 0, 0, 0, wib)

func newTestBot(t *testing.T) (*Bot, *fakeTable, *fakePublisher) {
	t.Helper()
	table := newFakeTable()
	pub := &fakePublisher{}
	b := New(table, &fakeReplier{}, pub, lock.NewLocal(time.Second), Options{
		ActivationTable: "AKTIVASI",
		UserTable:       "USERS",
	}, discardLogger())
	b.now = func() time.Time { return today }
	return b, table, pub
}

func chat(user, text string) hermes.ChatMessage {
	return hermes.ChatMessage{UserID: "U-" + user, UserName: user, ChannelID: "C1", Text: text}
}

const paste = `SN ONT : ZTEGC0FFEE12
NIK ONT : 99887766
OWNER : BGES
WORKZONE : BJM`

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		name string
		args []string
		ok   bool
	}{
		{"/laporan mingguan 2026-10-14", CmdReport, []string{"mingguan", "2026-10-14"}, true},
		{"/LAPORAN@aktivasi_bot", CmdReport, nil, true},
		{"/report", CmdReport, nil, true},
		{"/help", CmdHelp, nil, true},
		{"/xyz", "xyz", nil, true},
		{"sn ont : abc", CmdSubmit, []string{"sn", "ont", ":", "abc"}, true},
		{"selamat pagi", "", nil, false},
		{"   ", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, ok := ParseCommand(tt.text)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if cmd.Name != tt.name {
				t.Errorf("name = %q, want %q", cmd.Name, tt.name)
			}
			if strings.Join(cmd.Args, " ") != strings.Join(tt.args, " ") {
				t.Errorf("args = %q, want %q", cmd.Args, tt.args)
			}
		})
	}
}

func TestParseCommand_BodyKeepsLines(t *testing.T) {
	cmd, _ := ParseCommand("/aktivasi\n" + paste)
	if cmd.Body != paste {
		t.Errorf("body = %q, want paste", cmd.Body)
	}
}

func TestSubmit_StoresAndPublishes(t *testing.T) {
	b, table, pub := newTestBot(t)
	ctx := context.Background()

	reply := b.Handle(ctx, chat("budi", "/aktivasi "+paste))
	if !strings.Contains(reply, "Aktivasi tersimpan") || !strings.Contains(reply, "SN ONT: ZTEGC0FFEE12") {
		t.Fatalf("unexpected reply:\n%s", reply)
	}

	rows := table.rows("AKTIVASI")
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	rec := activation.RecordFromRow(rows[1])
	if rec.DateLabel != "Rabu, 14 Oktober 2026" {
		t.Errorf("date label = %q", rec.DateLabel)
	}
	if rec.TechnicianLabel != "Budi" || rec.Owner != "BGES" {
		t.Errorf("unexpected record %+v", rec)
	}

	if len(pub.events) != 1 || pub.events[0].subject != hermes.SubjectActivationRecorded {
		t.Fatalf("expected one recorded event, got %+v", pub.events)
	}
	ev := pub.events[0].data.(hermes.ActivationRecorded)
	if ev.Serial != "ZTEGC0FFEE12" || ev.EventID == "" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestSubmit_BarePasteIsSubmission(t *testing.T) {
	b, table, _ := newTestBot(t)
	b.Handle(context.Background(), chat("budi", paste))
	if len(table.rows("AKTIVASI")) != 2 {
		t.Error("expected bare paste to be stored")
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	b, table, _ := newTestBot(t)
	ctx := context.Background()

	b.Handle(ctx, chat("budi", "/aktivasi "+paste))
	reply := b.Handle(ctx, chat("siti", "/aktivasi "+strings.ToLower(paste)))

	if !strings.Contains(reply, "sudah pernah diinput") {
		t.Errorf("expected duplicate reply, got %q", reply)
	}
	if n := len(table.rows("AKTIVASI")); n != 2 {
		t.Errorf("duplicate must not be stored, rows = %d", n)
	}
}

func TestSubmit_MissingFields(t *testing.T) {
	b, table, _ := newTestBot(t)

	reply := b.Handle(context.Background(), chat("budi", "/aktivasi OWNER : BGES"))
	if !strings.Contains(reply, "SN ONT, NIK ONT") {
		t.Errorf("expected missing field names, got %q", reply)
	}
	if len(table.rows("AKTIVASI")) != 0 {
		t.Error("incomplete record must not be stored")
	}
}

func TestSubmit_ConcurrentDuplicatesStoreOnce(t *testing.T) {
	b, table, _ := newTestBot(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Handle(context.Background(), chat("budi", "/aktivasi "+paste))
		}()
	}
	wg.Wait()

	if n := len(table.rows("AKTIVASI")); n != 2 {
		t.Errorf("expected header + 1 row, got %d", n)
	}
}

func TestAuthorization(t *testing.T) {
	tests := []struct {
		name string
		msg  hermes.ChatMessage
		want string
	}{
		{"unknown user", chat("mallory", "/laporan"), "Akses ditolak."},
		{"inactive user", chat("joko", "/laporan"), "Akses ditolak."},
		{"non-admin dedupe", chat("budi", "/dedupe"), "Akses ditolak."},
		{"help is public", chat("mallory", "/help"), helpText},
		{"unknown command", chat("mallory", "/xyz"), "Perintah tidak dikenal. Ketik /help untuk daftar perintah."},
		{"chatter ignored", chat("budi", "halo semua"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, _ := newTestBot(t)
			if got := b.Handle(context.Background(), tt.msg); got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthorization_FallsBackToUserID(t *testing.T) {
	b, _, _ := newTestBot(t)
	msg := hermes.ChatMessage{UserID: "U999", UserName: "rina.k", ChannelID: "C1", Text: "/saya"}
	if reply := b.Handle(context.Background(), msg); !strings.Contains(reply, "Rina") {
		t.Errorf("expected stats for Rina, got %q", reply)
	}
}

func seedActivations(table *fakeTable) {
	row := func(day int, tech, owner, sn string) []string {
		return activation.Record{
			DateLabel:       period.FormatLabel(time.Date(2026, time.October, day, 0, 0, 0, 0, wib)),
			Owner:           owner,
			Workzone:        "BJM",
			ONTSerialNumber: sn,
			ONTNik:          "N" + sn,
			TechnicianLabel: tech,
		}.Row()
	}
	table.tables["AKTIVASI"] = [][]string{
		activation.Header(),
		row(12, "Budi", "BGES", "S1"),
		row(14, "Siti", "WMS", "S2"),
		row(14, "Budi", "BGES", "S3"),
		row(20, "Budi", "INDIBIZ", "S4"),
		row(20, "Budi", "INDIBIZ", "S4"),
		{"", "", "", "", "", "", "", "", "", "", "", "Joko"},
	}
}

func TestReports(t *testing.T) {
	b, table, _ := newTestBot(t)
	seedActivations(table)
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"daily default", "/laporan", []string{"Laporan Aktivasi Harian", "Total aktivasi: 2"}},
		{"weekly", "/laporan mingguan", []string{"Laporan Aktivasi Mingguan", "Total aktivasi: 3", "1. BUDI: 2"}},
		{"explicit date", "/laporan harian 2026-10-12", []string{"Total aktivasi: 1", "Senin, 12 Oktober 2026"}},
		{"top monthly", "/top", []string{"Ranking Teknisi Bulanan", "1. BUDI: 4", "2. SITI: 1"}},
		{"own stats", "/saya mingguan", []string{"Aktivasi Mingguan: Budi", "Total aktivasi: 2"}},
		{"bad date", "/laporan mingguan kemarin", []string{"Argumen tidak valid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := b.Handle(ctx, chat("budi", tt.text))
			for _, w := range tt.want {
				if !strings.Contains(reply, w) {
					t.Errorf("expected %q in:\n%s", w, reply)
				}
			}
		})
	}
}

func TestExport_OwnRecordsOnly(t *testing.T) {
	b, table, _ := newTestBot(t)
	seedActivations(table)

	reply := b.Handle(context.Background(), chat("siti", "/export"))
	if !strings.Contains(reply, "aktivasi_siti_monthly_20261001.csv") {
		t.Errorf("expected export file name in:\n%s", reply)
	}
	if !strings.Contains(reply, ",S2,") || strings.Contains(reply, ",S1,") {
		t.Errorf("export must contain only the caller's records:\n%s", reply)
	}

	empty := b.Handle(context.Background(), chat("siti", "/export harian 2026-01-01"))
	if !strings.Contains(empty, "Belum ada data") {
		t.Errorf("expected empty export reply, got %q", empty)
	}
}

func TestDedupe(t *testing.T) {
	b, table, pub := newTestBot(t)
	seedActivations(table)

	reply := b.Handle(context.Background(), chat("siti", "/dedupe"))
	if reply != "Dedupe selesai: 2 baris dihapus, 4 data tersisa." {
		t.Errorf("unexpected reply %q", reply)
	}
	if len(table.ranges) != 1 || table.ranges[0] != "A1:L" {
		t.Errorf("expected one A1:L rewrite, got %v", table.ranges)
	}
	if n := len(table.rows("AKTIVASI")); n != 5 {
		t.Errorf("expected header + 4 rows, got %d", n)
	}
	if len(pub.events) != 1 || pub.events[0].subject != hermes.SubjectActivationDeduped {
		t.Errorf("expected deduped event, got %+v", pub.events)
	}

	// A clean table is not rewritten.
	b.Handle(context.Background(), chat("siti", "/dedupe"))
	if len(table.ranges) != 1 {
		t.Errorf("clean table rewritten: %v", table.ranges)
	}
}

func TestDedupeTable_DryRun(t *testing.T) {
	table := newFakeTable()
	seedActivations(table)

	res, err := DedupeTable(context.Background(), table, lock.NewLocal(time.Second), "AKTIVASI", true)
	if err != nil {
		t.Fatalf("DedupeTable: %v", err)
	}
	if res.Dropped != 2 || res.Remaining != 4 {
		t.Errorf("unexpected result %+v", res)
	}
	if len(table.ranges) != 0 {
		t.Error("dry run must not rewrite")
	}
}

func TestStoreUnavailable(t *testing.T) {
	b, table, _ := newTestBot(t)
	table.readErr = errors.New("connection refused")

	reply := b.Handle(context.Background(), chat("budi", "/laporan"))
	if reply != "Terjadi kesalahan sistem. Silakan coba lagi nanti." {
		t.Errorf("unexpected reply %q", reply)
	}
	if strings.Contains(reply, "connection refused") {
		t.Error("store error must not leak to the caller")
	}
}

func TestStoreErrWraps(t *testing.T) {
	cause := errors.New("boom")
	err := storeErr("read users", cause)
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, cause) {
		t.Errorf("storeErr must wrap both sentinel and cause: %v", err)
	}
}

func TestLockTimeoutIsStoreUnavailable(t *testing.T) {
	b, _, _ := newTestBot(t)
	l := lock.NewLocal(10 * time.Millisecond)
	b.locker = l

	release, err := l.Acquire(context.Background(), "AKTIVASI")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	reply := b.Handle(context.Background(), chat("budi", "/aktivasi "+paste))
	if !strings.Contains(reply, "kesalahan sistem") {
		t.Errorf("expected system error reply, got %q", reply)
	}
}

func TestHandleChatMessage_RepliesInThread(t *testing.T) {
	b, _, _ := newTestBot(t)
	replier := &fakeReplier{}
	b.replier = replier

	b.HandleChatMessage(hermes.SubjectChatMessage, []byte(`{"user_id":"U1","user_name":"budi","channel_id":"C7","thread_ts":"1.2","text":"/help"}`))
	b.HandleChatMessage(hermes.SubjectChatMessage, []byte(`not json`))
	b.Stop()

	if len(replier.replies) != 1 || replier.replies[0] != helpText {
		t.Fatalf("unexpected replies %q", replier.replies)
	}
	if replier.threads[0] != "C7/1.2" {
		t.Errorf("reply went to %q", replier.threads[0])
	}
}

func TestStop_DropsLaterMessages(t *testing.T) {
	b, _, _ := newTestBot(t)
	replier := &fakeReplier{}
	b.replier = replier

	b.HandleChatMessage(hermes.SubjectChatMessage, []byte(`{"user_id":"U1","user_name":"budi","channel_id":"C7","text":"/help"}`))
	b.Stop()
	b.HandleChatMessage(hermes.SubjectChatMessage, []byte(`{"user_id":"U1","user_name":"budi","channel_id":"C7","text":"/help"}`))
	b.Stop()

	if len(replier.replies) != 1 {
		t.Errorf("expected only the message before Stop to be handled, got %d replies", len(replier.replies))
	}
}

type panicTable struct {
	*fakeTable
}

func (panicTable) ReadAll(context.Context, string) ([][]string, error) {
	panic("nil pool")
}

func TestHandleChatMessage_PanicRepliesSystemError(t *testing.T) {
	b, table, _ := newTestBot(t)
	b.table = panicTable{table}
	replier := &fakeReplier{}
	b.replier = replier

	b.HandleChatMessage(hermes.SubjectChatMessage, []byte(`{"user_id":"U1","user_name":"budi","channel_id":"C7","thread_ts":"1.2","text":"/laporan"}`))
	b.Stop()

	if len(replier.replies) != 1 || !strings.Contains(replier.replies[0], "kesalahan sistem") {
		t.Fatalf("unexpected replies %q", replier.replies)
	}
	if replier.threads[0] != "C7/1.2" {
		t.Errorf("reply went to %q", replier.threads[0])
	}
}

func TestNew_DefaultLocation(t *testing.T) {
	b := New(newFakeTable(), &fakeReplier{}, nil, lock.NewLocal(time.Second), Options{}, discardLogger())
	if _, offset := b.now().Zone(); offset != 7*60*60 {
		t.Errorf("default clock offset = %d, want UTC+7", offset)
	}

	utc := New(newFakeTable(), &fakeReplier{}, nil, lock.NewLocal(time.Second), Options{Location: time.UTC}, discardLogger())
	if utc.now().Location() != time.UTC {
		t.Errorf("clock location = %v, want UTC", utc.now().Location())
	}
}
