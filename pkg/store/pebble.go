// Package store persists conversations, reports, profiles and accounts in
// a single Pebble database and fans write events out to live streams.
//
// Key layout:
//
//	chat:<userID>:msg:<unix_nano_padded>-<seq>  message JSON
//	report:<unix_nano_padded>-<seq>             report JSON (feed order)
//	reportid:<reportID>                         feed key of the report
//	profile:<userID>                            profile JSON
//	account:<userID>                            account JSON
//	account:email:<email>                       account id
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"crimewatch/pkg/logger"
	"crimewatch/pkg/models"
)

var db *pebble.DB

// seq reduces key collisions when writes share a nanosecond timestamp.
var seq uint64

// ErrNotFound is returned for lookups that match nothing.
var ErrNotFound = pebble.ErrNotFound

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func notOpened() error {
	return fmt.Errorf("pebble not opened; call store.Open first")
}

func timeKey(prefix string) string {
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&seq, 1)
	return fmt.Sprintf("%s%020d-%06d", prefix, ts, s)
}

// prefixUpperBound returns the smallest key greater than every key having
// the prefix. Prefixes here end in ':' so a plain increment suffices.
func prefixUpperBound(prefix []byte) []byte {
	ub := append([]byte(nil), prefix...)
	ub[len(ub)-1]++
	return ub
}

// AppendMessage appends a message to a user's conversation log. Missing
// ID and timestamp are filled in, the completed message is returned and
// the event is published on the user's chat topic.
func AppendMessage(userID string, msg models.Message) (models.Message, error) {
	if db == nil {
		return models.Message{}, notOpened()
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	msg.UserID = userID

	key := timeKey("chat:" + userID + ":msg:")
	data, err := json.Marshal(msg)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("append_message_failed", "user", userID, "key", key, "error", err)
		return models.Message{}, err
	}
	logger.Info("message_appended", "user", userID, "msg_id", msg.ID, "sender", string(msg.Sender))
	events.Publish(ChatTopic(userID), Event{Kind: "message", Data: data})
	return msg, nil
}

// ListMessages returns the most recent messages of a user's conversation,
// ascending by time. limit caps the tail of the log; limit <= 0 returns
// everything.
func ListMessages(userID string, limit int) ([]models.Message, error) {
	if db == nil {
		return nil, notOpened()
	}
	prefix := []byte("chat:" + userID + ":msg:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	// Walk backwards from the end of the prefix range so the limit trims
	// the oldest entries, then reverse into ascending order.
	var out []models.Message
	for ok := iter.SeekLT(prefixUpperBound(prefix)); ok; ok = iter.Prev() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil || !m.Valid() {
			logger.Warn("list_messages_bad_entry", "user", userID, "key", string(iter.Key()), "error", err)
			m = placeholderMessage(m)
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// placeholderMessage stands in for a stored entry that cannot be
// displayed, keeping whatever identity and ordering fields survived.
func placeholderMessage(m models.Message) models.Message {
	m.Text = "This message could not be displayed."
	m.Sender = models.SenderSystem
	return m
}

// ChatUsers returns the ids of users with at least one stored message.
func ChatUsers() ([]string, error) {
	if db == nil {
		return nil, notOpened()
	}
	prefix := []byte("chat:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for ok := iter.SeekGE(prefix); ok; {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		rest := iter.Key()[len(prefix):]
		i := bytes.IndexByte(rest, ':')
		if i < 0 {
			ok = iter.Next()
			continue
		}
		user := string(rest[:i])
		out = append(out, user)
		// skip the remainder of this user's range
		ok = iter.SeekGE(prefixUpperBound([]byte("chat:" + user + ":")))
	}
	return out, iter.Error()
}

// PruneMessages trims a user's conversation log to its most recent keep
// entries and returns the number deleted.
func PruneMessages(userID string, keep int) (int, error) {
	if db == nil {
		return 0, notOpened()
	}
	if keep < 0 {
		keep = 0
	}
	prefix := []byte("chat:" + userID + ":msg:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	var keys [][]byte
	for ok := iter.SeekGE(prefix); ok; ok = iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	if len(keys) <= keep {
		return 0, nil
	}
	doomed := keys[:len(keys)-keep]
	for _, k := range doomed {
		if err := db.Delete(k, pebble.Sync); err != nil {
			return 0, err
		}
	}
	logger.Info("messages_pruned", "user", userID, "deleted", len(doomed), "kept", keep)
	return len(doomed), nil
}

// CreateReport stores a new crime report. The status is always forced to
// pending at creation regardless of what the caller set; transitions
// happen later through UpdateReportStatus. Missing ID and timestamp are
// filled in and the completed report is returned.
func CreateReport(r models.CrimeReport) (models.CrimeReport, error) {
	if db == nil {
		return models.CrimeReport{}, notOpened()
	}
	if r.UserID == "" {
		return models.CrimeReport{}, fmt.Errorf("report requires a submitter")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	r.Status = models.StatusPending

	key := timeKey("report:")
	data, err := json.Marshal(r)
	if err != nil {
		return models.CrimeReport{}, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("create_report_failed", "report", r.ID, "error", err)
		return models.CrimeReport{}, err
	}
	if err := db.Set([]byte("reportid:"+r.ID), []byte(key), pebble.Sync); err != nil {
		logger.Error("create_report_index_failed", "report", r.ID, "error", err)
		return models.CrimeReport{}, err
	}
	logger.Info("report_created", "report", r.ID, "type", string(r.CrimeType), "user", r.UserID)
	events.Publish(TopicFeed, Event{Kind: "report", Data: data})
	return r, nil
}

// ListReports returns reports descending by time. limit caps the result;
// limit <= 0 returns everything.
func ListReports(limit int) ([]models.CrimeReport, error) {
	if db == nil {
		return nil, notOpened()
	}
	prefix := []byte("report:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []models.CrimeReport
	for ok := iter.SeekLT(prefixUpperBound(prefix)); ok; ok = iter.Prev() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var r models.CrimeReport
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			logger.Warn("list_reports_bad_entry", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, iter.Error()
}

// GetReport looks a report up by id.
func GetReport(id string) (models.CrimeReport, error) {
	if db == nil {
		return models.CrimeReport{}, notOpened()
	}
	key, err := getRaw("reportid:" + id)
	if err != nil {
		return models.CrimeReport{}, err
	}
	data, err := getRaw(string(key))
	if err != nil {
		return models.CrimeReport{}, err
	}
	var r models.CrimeReport
	if err := json.Unmarshal(data, &r); err != nil {
		return models.CrimeReport{}, fmt.Errorf("invalid report JSON: %w", err)
	}
	return r, nil
}

// UpdateReportStatus transitions a report to the given status, updates the
// submitter's profile index entry and publishes the change on the feed.
func UpdateReportStatus(id string, status models.ReportStatus) (models.CrimeReport, error) {
	if db == nil {
		return models.CrimeReport{}, notOpened()
	}
	key, err := getRaw("reportid:" + id)
	if err != nil {
		return models.CrimeReport{}, err
	}
	data, err := getRaw(string(key))
	if err != nil {
		return models.CrimeReport{}, err
	}
	var r models.CrimeReport
	if err := json.Unmarshal(data, &r); err != nil {
		return models.CrimeReport{}, fmt.Errorf("invalid report JSON: %w", err)
	}
	r.Status = status
	nb, err := json.Marshal(r)
	if err != nil {
		return models.CrimeReport{}, err
	}
	if err := db.Set(key, nb, pebble.Sync); err != nil {
		logger.Error("update_report_status_failed", "report", id, "error", err)
		return models.CrimeReport{}, err
	}
	if err := updateReportRefStatus(r.UserID, id, status); err != nil && err != ErrNotFound {
		logger.Warn("report_ref_status_update_failed", "report", id, "user", r.UserID, "error", err)
	}
	logger.Info("report_status_updated", "report", id, "status", string(status))
	events.Publish(TopicFeed, Event{Kind: "report", Data: nb})
	return r, nil
}

// SaveProfile stores a user's profile document.
func SaveProfile(userID string, p models.UserProfile) error {
	if db == nil {
		return notOpened()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := db.Set([]byte("profile:"+userID), data, pebble.Sync); err != nil {
		logger.Error("save_profile_failed", "user", userID, "error", err)
		return err
	}
	logger.Info("profile_saved", "user", userID)
	return nil
}

// GetProfile loads a user's profile document.
func GetProfile(userID string) (models.UserProfile, error) {
	if db == nil {
		return models.UserProfile{}, notOpened()
	}
	data, err := getRaw("profile:" + userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	var p models.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return models.UserProfile{}, fmt.Errorf("invalid profile JSON: %w", err)
	}
	return p, nil
}

// AppendReportRef appends a report reference to the user's profile index.
// The index is append-only; entries are never removed.
func AppendReportRef(userID string, ref models.ReportRef) error {
	p, err := GetProfile(userID)
	if err != nil {
		return err
	}
	p.Reports = append(p.Reports, ref)
	return SaveProfile(userID, p)
}

func updateReportRefStatus(userID, reportID string, status models.ReportStatus) error {
	p, err := GetProfile(userID)
	if err != nil {
		return err
	}
	changed := false
	for i := range p.Reports {
		if p.Reports[i].ID == reportID {
			p.Reports[i].Status = status
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return SaveProfile(userID, p)
}

// SaveAccount stores an account record and its email lookup entry.
func SaveAccount(a models.Account) error {
	if db == nil {
		return notOpened()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := db.Set([]byte("account:"+a.ID), data, pebble.Sync); err != nil {
		logger.Error("save_account_failed", "user", a.ID, "error", err)
		return err
	}
	if err := db.Set([]byte("account:email:"+a.Email), []byte(a.ID), pebble.Sync); err != nil {
		logger.Error("save_account_email_index_failed", "user", a.ID, "error", err)
		return err
	}
	logger.Info("account_saved", "user", a.ID)
	return nil
}

// GetAccount loads an account by id.
func GetAccount(id string) (models.Account, error) {
	if db == nil {
		return models.Account{}, notOpened()
	}
	data, err := getRaw("account:" + id)
	if err != nil {
		return models.Account{}, err
	}
	var a models.Account
	if err := json.Unmarshal(data, &a); err != nil {
		return models.Account{}, fmt.Errorf("invalid account JSON: %w", err)
	}
	return a, nil
}

// GetAccountByEmail resolves the email index and loads the account.
func GetAccountByEmail(email string) (models.Account, error) {
	if db == nil {
		return models.Account{}, notOpened()
	}
	id, err := getRaw("account:email:" + email)
	if err != nil {
		return models.Account{}, err
	}
	return GetAccount(string(id))
}

// EmailTaken reports whether an account already uses the email.
func EmailTaken(email string) (bool, error) {
	if db == nil {
		return false, notOpened()
	}
	_, err := getRaw("account:email:" + email)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func getRaw(key string) ([]byte, error) {
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		closer.Close()
	}
	return out, nil
}
