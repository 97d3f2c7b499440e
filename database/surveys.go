package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/mbolis/survey-studio/model"
)

// ListSurveys returns the surveys of an owner with their recipients, without
// sections.
func ListSurveys(ctx context.Context, db *sql.DB, ownerID int64) ([]model.Survey, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, status, start_date, end_date
		FROM survey
		WHERE owner_id = ?
		ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list surveys")
	}
	defer rows.Close()

	surveys := []model.Survey{}
	index := map[int64]int{}
	for rows.Next() {
		s := model.Survey{UsersToSend: []string{}}
		err = rows.Scan(&s.SurveyID, &s.Name, &s.Status, &s.StartDate, &s.EndDate)
		if err != nil {
			return nil, errors.Wrap(err, "list surveys: scan")
		}
		index[s.SurveyID] = len(surveys)
		surveys = append(surveys, s)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list surveys")
	}

	recipients, err := db.QueryContext(ctx, `
		SELECT r.survey_id, r.address
		FROM survey_recipient r
		INNER JOIN survey s ON (s.id = r.survey_id)
		WHERE s.owner_id = ?
		ORDER BY r.survey_id, r.position`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list recipients")
	}
	defer recipients.Close()

	for recipients.Next() {
		var surveyID int64
		var address string
		if err = recipients.Scan(&surveyID, &address); err != nil {
			return nil, errors.Wrap(err, "list recipients: scan")
		}
		if i, ok := index[surveyID]; ok {
			surveys[i].UsersToSend = append(surveys[i].UsersToSend, address)
		}
	}
	return surveys, errors.Wrap(recipients.Err(), "list recipients")
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetSurvey loads a whole survey, with sections and questions in priority
// order. Surveys of other owners are not found.
func GetSurvey(ctx context.Context, db *sql.DB, ownerID, id int64) (model.Survey, error) {
	return getSurvey(ctx, db, ownerID, id)
}

func getSurvey(ctx context.Context, q querier, ownerID, id int64) (s model.Survey, err error) {
	err = q.QueryRowContext(ctx, `
		SELECT id, name, status, start_date, end_date
		FROM survey
		WHERE id = ?
			AND owner_id = ?`,
		id,
		ownerID,
	).Scan(&s.SurveyID, &s.Name, &s.Status, &s.StartDate, &s.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, ErrNotFound
	}
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "get survey")
	}

	if s.UsersToSend, err = recipients(ctx, q, id); err != nil {
		return model.Survey{}, err
	}
	if s.Sections, err = sections(ctx, q, id); err != nil {
		return model.Survey{}, err
	}
	return s, nil
}

func recipients(ctx context.Context, q querier, surveyID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT address
		FROM survey_recipient
		WHERE survey_id = ?
		ORDER BY position`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get recipients")
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var address string
		if err = rows.Scan(&address); err != nil {
			return nil, errors.Wrap(err, "get recipients: scan")
		}
		users = append(users, address)
	}
	return users, errors.Wrap(rows.Err(), "get recipients")
}

func sections(ctx context.Context, q querier, surveyID int64) ([]model.Section, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT
			s.id, s.name, s.priority,
			q.id, q.text, q.type, q.priority, q.answers
		FROM section s
		LEFT OUTER JOIN question q ON (s.id = q.section_id)
		WHERE s.survey_id = ?
		ORDER BY s.priority, s.id, q.priority, q.id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get sections")
	}
	defer rows.Close()

	sections := []model.Section{}
	for rows.Next() {
		var sec model.Section
		var sectionID int64
		var questionID, questionPriority sql.NullInt64
		var text, qtype, answers sql.NullString
		err = rows.Scan(
			&sectionID, &sec.SectionName, &sec.Priority,
			&questionID, &text, &qtype, &questionPriority, &answers,
		)
		if err != nil {
			return nil, errors.Wrap(err, "get sections: scan")
		}

		last := len(sections) - 1
		if last < 0 || *sections[last].SectionID != sectionID {
			sec.SectionID = &sectionID
			sec.Questions = []model.Question{}
			sections = append(sections, sec)
			last++
		}
		if !questionID.Valid {
			continue
		}

		qid := questionID.Int64
		sections[last].Questions = append(sections[last].Questions, model.Question{
			QuestionID:       &qid,
			QuestionText:     text.String,
			QuestionType:     model.QuestionType(qtype.String),
			QuestionPriority: int(questionPriority.Int64),
			QuestionAnswers:  answers.String,
		})
	}
	return sections, errors.Wrap(rows.Err(), "get sections")
}

// CreateSurvey stores a new survey and returns its id. Identifiers carried by
// the payload are ignored.
func CreateSurvey(ctx context.Context, db *sql.DB, ownerID int64, s model.Survey) (id int64, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer rollback(tx)

	id, err = insertSurvey(ctx, tx, ownerID, s)
	if err != nil {
		return 0, err
	}
	if err = insertContent(ctx, tx, id, s, false); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "create survey: commit")
	}
	return id, nil
}

func insertSurvey(ctx context.Context, tx *sql.Tx, ownerID int64, s model.Survey) (id int64, err error) {
	err = tx.QueryRowContext(ctx, `
		INSERT INTO survey (owner_id, name, status, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		ownerID,
		s.Name,
		s.Status,
		s.StartDate,
		s.EndDate,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert survey")
	}
	return id, nil
}

// insertContent writes recipients, sections and questions. With keepIDs the
// identifiers found in the payload are reused; missing ones are assigned.
func insertContent(ctx context.Context, tx *sql.Tx, surveyID int64, s model.Survey, keepIDs bool) error {
	recipientStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO survey_recipient (survey_id, position, address)
		VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "insert recipients: prepare")
	}
	defer recipientStmt.Close()

	for i, address := range s.UsersToSend {
		_, err = recipientStmt.ExecContext(ctx, surveyID, i+1, address)
		if err != nil {
			return errors.Wrap(err, "insert recipients")
		}
	}

	sectionStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO section (id, survey_id, name, priority)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	if err != nil {
		return errors.Wrap(err, "insert sections: prepare")
	}
	defer sectionStmt.Close()

	questionStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (id, section_id, text, type, priority, answers)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "insert questions: prepare")
	}
	defer questionStmt.Close()

	for _, sec := range s.Sections {
		var sectionID int64
		err = sectionStmt.QueryRowContext(ctx, keptID(sec.SectionID, keepIDs), surveyID, sec.SectionName, sec.Priority).
			Scan(&sectionID)
		if err != nil {
			return errors.Wrap(err, "insert section")
		}

		for _, q := range sec.Questions {
			answers := q.QuestionAnswers
			if q.QuestionType == model.QuestionText {
				answers = ""
			}
			_, err = questionStmt.ExecContext(ctx,
				keptID(q.QuestionID, keepIDs), sectionID, q.QuestionText, q.QuestionType, q.QuestionPriority, answers)
			if err != nil {
				return errors.Wrap(err, "insert question")
			}
		}
	}
	return nil
}

// keptID is the value bound to an id column: NULL lets SQLite assign one.
func keptID(id *int64, keep bool) any {
	if !keep || id == nil {
		return nil
	}
	return *id
}

// UpdateSurvey replaces the content of a survey. Sections and questions that
// carry an id keep it; the ids must belong to the survey being updated.
// Published surveys cannot change.
func UpdateSurvey(ctx context.Context, db *sql.DB, ownerID, id int64, s model.Survey) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer rollback(tx)

	if err = checkEditable(ctx, tx, ownerID, id); err != nil {
		return err
	}
	if err = checkOwnIDs(ctx, tx, id, s); err != nil {
		return err
	}

	// delete all content
	_, err = tx.ExecContext(ctx, `
		DELETE FROM question
		WHERE section_id IN (SELECT id FROM section WHERE survey_id = ?)`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "update survey: delete questions")
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM section WHERE survey_id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "update survey: delete sections")
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM survey_recipient WHERE survey_id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "update survey: delete recipients")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE survey
		SET
			name = ?,
			status = ?,
			start_date = ?,
			end_date = ?
		WHERE id = ?`,
		s.Name,
		s.Status,
		s.StartDate,
		s.EndDate,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "update survey")
	}

	// recreate all content
	if err = insertContent(ctx, tx, id, s, true); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "update survey: commit")
}

func checkEditable(ctx context.Context, tx *sql.Tx, ownerID, id int64) error {
	var status model.Status
	err := tx.QueryRowContext(ctx, `
		SELECT status
		FROM survey
		WHERE id = ?
			AND owner_id = ?`,
		id,
		ownerID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "get survey status")
	}
	if status == model.StatusPublished {
		return ErrPublished
	}
	return nil
}

// checkOwnIDs refuses section and question ids that belong to another survey
// or appear twice in the payload.
func checkOwnIDs(ctx context.Context, tx *sql.Tx, surveyID int64, s model.Survey) error {
	owned, err := ownedIDs(ctx, tx, `SELECT id FROM section WHERE survey_id = ?`, surveyID)
	if err != nil {
		return err
	}
	ownedQuestions, err := ownedIDs(ctx, tx, `
		SELECT q.id
		FROM question q
		INNER JOIN section s ON (s.id = q.section_id)
		WHERE s.survey_id = ?`,
		surveyID,
	)
	if err != nil {
		return err
	}

	for _, sec := range s.Sections {
		if !claim(owned, sec.SectionID) {
			return errors.Wrapf(ErrUnknownID, "section %d", *sec.SectionID)
		}
		for _, q := range sec.Questions {
			if !claim(ownedQuestions, q.QuestionID) {
				return errors.Wrapf(ErrUnknownID, "question %d", *q.QuestionID)
			}
		}
	}
	return nil
}

// claim marks id as used. A nil id is always accepted.
func claim(ids map[int64]bool, id *int64) bool {
	if id == nil {
		return true
	}
	free, ok := ids[*id]
	if !ok || !free {
		return false
	}
	ids[*id] = false
	return true
}

func ownedIDs(ctx context.Context, tx *sql.Tx, query string, surveyID int64) (map[int64]bool, error) {
	rows, err := tx.QueryContext(ctx, query, surveyID)
	if err != nil {
		return nil, errors.Wrap(err, "get owned ids")
	}
	defer rows.Close()

	ids := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "get owned ids: scan")
		}
		ids[id] = true
	}
	return ids, errors.Wrap(rows.Err(), "get owned ids")
}

// DeleteSurvey removes a draft survey with all its content.
func DeleteSurvey(ctx context.Context, db *sql.DB, ownerID, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer rollback(tx)

	if err = checkEditable(ctx, tx, ownerID, id); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM survey WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete survey")
	}

	return errors.Wrap(tx.Commit(), "delete survey: commit")
}

// DuplicateSurvey copies a survey under a new name. The copy is a draft and
// gets fresh ids.
func DuplicateSurvey(ctx context.Context, db *sql.DB, ownerID, id int64, name string) (newID int64, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer rollback(tx)

	s, err := getSurvey(ctx, tx, ownerID, id)
	if err != nil {
		return 0, err
	}
	s.Name = name
	s.Status = model.StatusDraft

	newID, err = insertSurvey(ctx, tx, ownerID, s)
	if err != nil {
		return 0, err
	}
	if err = insertContent(ctx, tx, newID, s, false); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "duplicate survey: commit")
	}
	return newID, nil
}
