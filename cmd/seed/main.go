// Package main seeds the catalog database with ten genres and a set of
// sample movies, all owned by a placeholder user. Running it against an
// already-seeded database is safe: genres are matched by name and movies by
// name within their genre, and existing rows are left alone.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/movie-catalog/internal/model"
	sqliteRepo "github.com/sakif/movie-catalog/internal/repository/sqlite"
)

type seedMovie struct {
	name        string
	description string
}

type seedGenre struct {
	name   string
	movies []seedMovie
}

var catalog = []seedGenre{
	{name: "Action", movies: []seedMovie{
		{"Alien", "A 1979 film directed by Ridley Scott, it follows the crew of the commercial space tug Nostromo who encounter the eponymous Alien, a deadly and aggressive extraterrestrial set loose on the ship"},
		{"Die Hard", "A 1988 film directed by John McTiernan that follows off-duty New York City Police Department officer John McClane (Bruce Willis) who is caught in a Los Angeles skyscraper during a heist led by Hans Gruber (Alan Rickman)"},
		{"Predator", "A 1987 film directed by John McTiernan that follows an elite military rescue team on a mission to save hostages in guerrilla-held territory in Central America. The Predator, a technologically advanced space alien, stalks and hunts the main characters"},
		{"The Matrix", "A 1999 film directed by the Wachowskis, it depicts a dystopian future in which humanity is unknowingly trapped inside a simulated reality, the Matrix, created by thought-capable machines to distract humans while using their bodies as an energy source"},
		{"Gladiator", "A 2000 film directed by Ridley Scott that follows general Maximus Decimus Meridius, who is betrayed when Commodus, the ambitious son of Emperor Marcus Aurelius, murders his father and seizes the throne"},
	}},
	{name: "Adventure", movies: []seedMovie{
		{"Kong: Skull Island", "A 2017 film directed by Jordan Vogt-Roberts that is a reboot of the King Kong franchise"},
		{"Captain America: The First Avenger", "A 2011 film based on the Marvel Comics character Captain America. The film tells the story of Steve Rogers, a man from Brooklyn who is transformed into the super-soldier Captain America and must stop the Red Skull, who intends to use an artifact called the 'Tesseract' as a source for world domination"},
		{"The Avengers", "A 2012 film based on the Marvel Comics superhero team of the same name. In the film, Nick Fury, director of the spy agency S.H.I.E.L.D., recruits Tony Stark, Steve Rogers, Bruce Banner, and Thor to form a team that must stop Thor's brother Loki from subjugating Earth"},
		{"Guardians of the Galaxy", "A 2014 film based on the Marvel Comics superhero team of the same name. In the film, Peter Quill forms an uneasy alliance with a group of extraterrestrial criminals who are on the run after stealing a powerful artifact"},
		{"Doctor Strange", "A 2016 film based on the Marvel Comics character of the same name. In the film, former surgeon Stephen Strange learns the mystic arts after a career-ending car crash"},
	}},
	{name: "Comedy", movies: []seedMovie{
		{"21 Jump Street", "A 2012 film directed by Phil Lord and Christopher Miller, it follows two police officers who are forced to relive high school when they are assigned to go undercover as high school students to prevent the outbreak of a new synthetic drug and arrest its supplier"},
		{"Bridesmaids", "A 2011 film directed by Paul Feig, it centers on Annie (Kristen Wiig), who suffers a series of misfortunes after being asked to serve as maid of honor for her best friend, Lillian (Maya Rudolph)"},
		{"The Hangover", "A 2009 film directed by Todd Phillips, it tells the story of Phil Wenneck, Stu Price, Alan Garner, and Doug Billings, who travel to Las Vegas for a bachelor party to celebrate Doug's impending marriage"},
		{"Step Brothers", "A 2008 film directed by Adam Mckay, it follows Brennan (Will Ferrell) and Dale (John C. Reilly), two grown men who are forced to live together as brothers after their single parents marry each other"},
		{"Tropic Thunder", "A 2008 film directed by Ben Stiller, it follows a group of prima donna actors who, when their frustrated director (Steve Coogan) drops them in the middle of a jungle, are forced to rely on their acting skills to survive the real action and danger"},
	}},
	{name: "Drama", movies: []seedMovie{
		{"First Man", "A 2018 film directed by Damien Chazelle that follows the years leading up to the Apollo 11 mission to the Moon in 1969"},
		{"True Story", "A 2015 film directed by Rupert Goold, it follows the story of Christian Longo, a man on the FBI's most wanted list accused of murdering his wife and three children in Oregon. He hid in Mexico using the identity of journalist Michael Finkel"},
		{"The Help", "A 2011 film directed by Tate Taylor, it recounts the story of aspiring journalist Eugenia. The story focuses on her relationship with two black maids, Aibileen and Minny, during the Civil Rights Movement in 1963 Jackson, Mississippi"},
		{"Schindler's List", "A 1993 film directed by Steven Spielberg, it follows Oskar Schindler, a Sudeten German businessman, who saved the lives of more than a thousand mostly Polish-Jewish refugees from the Holocaust by employing them in his factories during World War II"},
		{"The Shawshank Redemption", "A 1994 film directed by Frank Darabont, it tells the story of banker Andy Dufresne, who is sentenced to life in Shawshank State Penitentiary for the murder of his wife and her lover, despite his claims of innocence"},
	}},
	{name: "Fantasy", movies: []seedMovie{
		{"Fantastic Beasts and Where to Find Them", "A 2016 film directed by David Yates, it is a spin-off and prequel to the Harry Potter film series, and is produced and written by J. K. Rowling, inspired by her 2001 guide book of the same name"},
		{"The Hobbit: An Unexpected Journey", "A 2012 film directed by Peter Jackson, tells the tale of Bilbo Baggins, who is convinced by the wizard Gandalf to accompany thirteen Dwarves, led by Thorin Oakenshield, on a quest to reclaim the Lonely Mountain from the dragon Smaug"},
		{"Harry Potter and the Deathly Hallows: Part 2", "A 2011 film directed by David Yates, the film continues to follow Harry Potter's quest to find and destroy Lord Voldemort's Horcruxes in order to stop him once and for all"},
	}},
	{name: "Horror", movies: []seedMovie{
		{"Us", "A 2019 film directed by Jordan Peele, it follows a family who are confronted by murderous doppelgangers known as 'the Tethered'"},
		{"It", "A 2017 film directed by Andrés Muschietti, it tells the story of seven children in Derry, Maine, who are terrorized by the eponymous being, only to face their own personal demons in the process"},
		{"Get Out", "A 2017 film directed by Jordan Peele, it follows Chris Washington, a young African-American man who uncovers a disturbing secret when he meets the family of his Caucasian girlfriend"},
	}},
	{name: "Mystery", movies: []seedMovie{
		{"Zodiac", "A 2007 film directed by David Fincher, it tells the story of the manhunt for the Zodiac Killer, a serial killer who called himself the 'Zodiac' and killed in and around the San Francisco Bay Area during the late 1960s and early 1970s"},
		{"Shutter Island", "A 2010 film directed by Martin Scorsese, U.S. Marshal Edward 'Teddy' Daniels is investigating a psychiatric facility on Shutter Island after one of the patients goes missing"},
		{"Seven", "A 1995 film directed by David Fincher, it tells the story of David Mills, a detective who partners with the retiring William Somerset to track down a serial killer who uses the seven deadly sins as a motif in his murders"},
	}},
	{name: "Romance", movies: []seedMovie{
		{"The Notebook", "A 2004 film directed by Nick Cassavetes, the film stars Ryan Gosling and Rachel McAdams as a young couple who fall in love in the 1940s"},
		{"Valentine's Day", "A 2010 film directed by Garry Marshall, the film follows a group of related characters and their struggles with love on Valentine's Day"},
		{"The Proposal", "A 2009 film directed by Anne Fletcher, it centers on a Canadian executive who learns that she may face deportation from the U.S. because of her expired visa. Determined to stay, she convinces her assistant to act as her fiancé"},
	}},
	{name: "Science Fiction", movies: []seedMovie{
		{"Arrival", "A 2016 film directed by Denis Villeneuve, the film follows a linguist enlisted by the U.S. Army to discover how to communicate with aliens who have arrived on Earth, before tensions lead to war"},
		{"Interstellar", "A 2014 film directed by Christopher Nolan, the film follows a group of astronauts who travel through a wormhole near Saturn in search of a new home for humanity"},
		{"Inception", "A 2010 film directed by Christopher Nolan, the film follows a professional thief who steals information by infiltrating the subconscious"},
	}},
	{name: "Thriller", movies: []seedMovie{
		{"The Silence of the Lambs", "A 1991 film directed by Jonathan Demme, it follows Clarice Starling, a young FBI trainee, who seeks the advice of imprisoned Dr. Hannibal Lecter, a brilliant psychiatrist and cannibalistic serial killer to apprehend another serial killer"},
		{"Searching", "A 2018 film directed by Aneesh Chaganty, set entirely on computer screens and smartphones, the film follows a father trying to find his missing 16-year-old daughter with the help of a police detective"},
		{"Gone Girl", "A 2014 film directed by David Fincher, the story begins as a mystery that follows the events surrounding Nick Dunne, who becomes the primary suspect in the sudden disappearance of his wife Amy"},
	}},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dbPath := "data/catalog.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	seedUser := &model.User{
		Name:    "Robo Barista",
		Email:   "tinnyTim@udacity.com",
		Picture: "https://pbs.twimg.com/profile_images/2671170543/18debd694829ed78203a5a36dd364160_300x300.png",
	}
	if err := db.Users().FindOrCreateByEmail(ctx, seedUser); err != nil {
		logger.Error("failed to create seed user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Index existing genres by name so a second run adds nothing.
	existing, err := db.Genres().List(ctx)
	if err != nil {
		logger.Error("failed to list genres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	genreIDs := make(map[string]string, len(existing))
	for _, g := range existing {
		genreIDs[g.Name] = g.ID
	}

	var addedGenres, addedMovies int
	for _, sg := range catalog {
		genreID, ok := genreIDs[sg.name]
		if !ok {
			genre := &model.Genre{Name: sg.name, UserID: seedUser.ID}
			if err := db.Genres().Create(ctx, genre); err != nil {
				logger.Error("failed to create genre",
					slog.String("genre", sg.name),
					slog.String("error", err.Error()),
				)
				os.Exit(1)
			}
			genreID = genre.ID
			addedGenres++
		}

		current, err := db.Movies().ListByGenre(ctx, genreID)
		if err != nil {
			logger.Error("failed to list movies",
				slog.String("genre", sg.name),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		have := make(map[string]bool, len(current))
		for _, m := range current {
			have[m.Name] = true
		}

		for _, sm := range sg.movies {
			if have[sm.name] {
				continue
			}
			movie := &model.Movie{
				Name:        sm.name,
				Description: sm.description,
				GenreID:     genreID,
				UserID:      seedUser.ID,
			}
			if err := db.Movies().Create(ctx, movie); err != nil {
				logger.Error("failed to create movie",
					slog.String("movie", sm.name),
					slog.String("error", err.Error()),
				)
				os.Exit(1)
			}
			addedMovies++
		}
	}

	logger.Info("seed complete",
		slog.String("database", dbPath),
		slog.Int("genres_added", addedGenres),
		slog.Int("movies_added", addedMovies),
	)
}
