package vocabulary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/storage/memory"
	"github.com/mcoot/symptomcheck/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) writeFile(content string) string {
	path := filepath.Join(s.T().TempDir(), "symptoms.json")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ServiceSuite) TestIsNotLoadedByDefault() {
	s.False(s.service.IsLoaded())
	s.Equal(0, s.service.Size())

	_, err := s.service.Vector([]string{"fever"})
	s.ErrorIs(err, model.ErrVocabularyNotLoaded)
}

func (s *ServiceSuite) TestLoadSymptoms() {
	err := s.service.LoadSymptoms([]string{"fever", "cough", "fatigue"})
	s.Require().NoError(err)

	s.True(s.service.IsLoaded())
	s.Equal(3, s.service.Size())
	s.Equal([]string{"fever", "cough", "fatigue"}, s.service.Symptoms())
	s.True(s.service.Contains("cough"))
	s.False(s.service.Contains("Cough"))
}

func (s *ServiceSuite) TestLoadRejectsEmptyBlankAndDuplicate() {
	s.Error(s.service.LoadSymptoms(nil))
	s.Error(s.service.LoadSymptoms([]string{"fever", " "}))
	s.Error(s.service.LoadSymptoms([]string{"fever", "fever"}))
	s.False(s.service.IsLoaded())
}

func (s *ServiceSuite) TestVectorMarksSelectedPositions() {
	_ = s.service.LoadSymptoms([]string{"fever", "cough", "fatigue"})

	vector, err := s.service.Vector([]string{"fever", "cough"})
	s.Require().NoError(err)
	s.Equal([]float64{1, 1, 0}, vector)

	vector, err = s.service.Vector([]string{"fatigue"})
	s.Require().NoError(err)
	s.Equal([]float64{0, 0, 1}, vector)
}

func (s *ServiceSuite) TestVectorIgnoresSelectionOrder() {
	_ = s.service.LoadSymptoms([]string{"fever", "cough", "fatigue"})

	a, _ := s.service.Vector([]string{"fatigue", "fever"})
	b, _ := s.service.Vector([]string{"fever", "fatigue"})
	s.Equal(a, b)
}

func (s *ServiceSuite) TestVectorRejectsUnknownSymptom() {
	_ = s.service.LoadSymptoms([]string{"fever", "cough", "fatigue"})

	_, err := s.service.Vector([]string{"fever", "sneezing"})
	s.ErrorIs(err, model.ErrUnknownSymptom)
	s.Contains(err.Error(), "sneezing")
}

func (s *ServiceSuite) TestSymptomsReturnsCopy() {
	_ = s.service.LoadSymptoms([]string{"fever", "cough"})

	symptoms := s.service.Symptoms()
	symptoms[0] = "changed"

	s.Equal([]string{"fever", "cough"}, s.service.Symptoms())
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := s.writeFile(`["fever", "cough", "fatigue"]`)

	err := s.service.LoadFromFile(s.ctx, path)
	s.Require().NoError(err)
	s.Equal([]string{"fever", "cough", "fatigue"}, s.service.Symptoms())

	// Saved to storage as well
	stored, err := s.storage.GetVocabulary(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"fever", "cough", "fatigue"}, stored)
}

func (s *ServiceSuite) TestLoadFromFileMissing() {
	err := s.service.LoadFromFile(s.ctx, filepath.Join(s.T().TempDir(), "missing.json"))
	s.Error(err)
	s.False(s.service.IsLoaded())
}

func (s *ServiceSuite) TestLoadFromFileInvalidJSON() {
	path := s.writeFile(`{"fever": 1}`)

	err := s.service.LoadFromFile(s.ctx, path)
	s.Error(err)
	s.False(s.service.IsLoaded())
}

func (s *ServiceSuite) TestLoadFromStorage() {
	err := s.storage.SaveVocabulary(s.ctx, []string{"headache", "nausea"})
	s.Require().NoError(err)

	err = s.service.LoadFromStorage(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"headache", "nausea"}, s.service.Symptoms())
}

func (s *ServiceSuite) TestLoadFromStorageWhenEmpty() {
	err := s.service.LoadFromStorage(s.ctx)
	s.ErrorIs(err, model.ErrVocabularyNotLoaded)
}
